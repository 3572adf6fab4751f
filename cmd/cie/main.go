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

// Package main implements the cie CLI for indexing repositories into the
// layered IR and querying or analyzing the result.
//
// Usage:
//
//	cie init                       Create .cie/project.yaml configuration
//	cie index                      Index the current repository
//	cie status [--json]            Show snapshot statistics
//	cie query <kind> [--json]      List IR nodes by kind, name, file
//	cie analyze --template <id>    Run an analysis template, print the envelope
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kraklabs/cie/internal/ui"
)

// Version information (set via ldflags during build). The default must
// stay a valid semver prefix: evidence provenance validates it.
var (
	version = "0.3.0"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags are the flags shared by every subcommand.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	NoColor bool
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "", "Path to .cie/project.yaml (default: ./.cie/project.yaml)")
		jsonOut     = flag.Bool("json", false, "Machine-readable JSON output")
		quiet       = flag.Bool("q", false, "Suppress progress output")
		noColor     = flag.Bool("no-color", false, "Disable colored output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `cie - Code Intelligence Engine CLI

Usage:
  cie <command> [options]

Commands:
  init          Create .cie/project.yaml configuration
  index         Index the current repository into an IR snapshot
  status        Show snapshot statistics
  query         List IR nodes (kind, name, file, callers)
  analyze       Run an analysis template and print its result envelope

Global Options:
  --config      Path to .cie/project.yaml
  --json        Machine-readable JSON output
  -q            Suppress progress output
  --no-color    Disable colored output
  --version     Show version and exit

Examples:
  cie init
  cie index
  cie index --incremental
  cie status --json
  cie query Function --name Handle --limit 20
  cie analyze --template sql_injection
  cie analyze --template cost_complexity --json

Data Storage:
  Snapshots and the workspace database live in ~/.cie/data/<repo_id>/
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("cie version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	globals := GlobalFlags{JSON: *jsonOut, Quiet: *quiet || *jsonOut, NoColor: *noColor}
	ui.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command, cmdArgs := args[0], args[1:]
	switch command {
	case "init":
		runInit(cmdArgs, *configPath, globals)
	case "index":
		runIndex(cmdArgs, *configPath, globals)
	case "status":
		runStatus(cmdArgs, *configPath, globals)
	case "query":
		runQuery(cmdArgs, *configPath, globals)
	case "analyze":
		runAnalyze(cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
