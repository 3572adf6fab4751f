// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	cliErrors "github.com/kraklabs/cie/internal/errors"
	"github.com/kraklabs/cie/internal/ui"
)

var repoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// runInit creates .cie/project.yaml for the current repository.
//
// Flags:
//   - --repo-id: project identifier (default: current directory name)
//   - --force: overwrite an existing configuration
func runInit(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	repoID := fs.String("repo-id", "", "Project identifier (default: current directory name)")
	force := fs.Bool("force", false, "Overwrite an existing configuration")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: cie init [options]

Creates .cie/project.yaml in the current directory.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	path := configPath
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); err == nil && !*force {
		cliErrors.FatalError(cliErrors.NewInputError(
			"Configuration already exists",
			path+" is already present",
			"Use 'cie init --force' to overwrite it",
		), globals.JSON)
	}

	id := *repoID
	if id == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cliErrors.FatalError(cliErrors.NewInternalError("Cannot resolve working directory", err.Error(), "", err), globals.JSON)
		}
		id = strings.ToLower(filepath.Base(cwd))
	}
	if !repoIDPattern.MatchString(id) {
		cliErrors.FatalError(cliErrors.NewInputError(
			"Invalid repo id",
			fmt.Sprintf("%q contains characters outside [a-zA-Z0-9._-]", id),
			"Pass a simpler name with --repo-id",
		), globals.JSON)
	}

	cfg := defaultConfig(id)
	data, err := yaml.Marshal(cfg)
	if err != nil {
		cliErrors.FatalError(cliErrors.NewInternalError("Cannot serialize configuration", err.Error(), "", err), globals.JSON)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		cliErrors.FatalError(cliErrors.NewConfigError("Cannot create .cie directory", err.Error(), "Check directory permissions", err), globals.JSON)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		cliErrors.FatalError(cliErrors.NewConfigError("Cannot write configuration", err.Error(), "Check directory permissions", err), globals.JSON)
	}

	if globals.JSON {
		fmt.Printf("{\"config_path\": %q, \"repo_id\": %q}\n", path, id)
		return
	}
	ui.Successf("Created %s for project %q", path, id)
	fmt.Printf("%s %s\n", ui.Label("Next:"), "run 'cie index' to build the first snapshot")
}
