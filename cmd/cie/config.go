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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	cliErrors "github.com/kraklabs/cie/internal/errors"
)

// defaultConfigPath is where LoadConfig looks when --config is not set.
const defaultConfigPath = ".cie/project.yaml"

// Config is the per-project configuration read from .cie/project.yaml.
type Config struct {
	RepoID       string   `yaml:"repo_id"`
	ExcludeGlobs []string `yaml:"exclude_globs,omitempty"`
	MaxFileSize  int64    `yaml:"max_file_size,omitempty"`
	Enrich       bool     `yaml:"enrich,omitempty"`
	// DataDir overrides the default ~/.cie/data/<repo_id> location.
	DataDir string `yaml:"data_dir,omitempty"`
}

// defaultConfig fills the values cie init writes for a fresh project.
func defaultConfig(repoID string) *Config {
	return &Config{
		RepoID:       repoID,
		ExcludeGlobs: []string{".git/**", "vendor/**", "node_modules/**", "dist/**", "build/**"},
		MaxFileSize:  1024 * 1024,
	}
}

// LoadConfig reads the project configuration, from configPath when set
// or from ./.cie/project.yaml otherwise.
func LoadConfig(configPath string) (*Config, error) {
	path := configPath
	if path == "" {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cliErrors.NewConfigError(
				"Cannot load project configuration",
				fmt.Sprintf("No configuration found at %s", path),
				"Run 'cie init' to create one",
				err,
			)
		}
		return nil, cliErrors.NewConfigError(
			"Cannot read project configuration",
			err.Error(),
			"Check file permissions on "+path,
			err,
		)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cliErrors.NewConfigError(
			"Cannot parse project configuration",
			fmt.Sprintf("%s is not valid YAML: %v", path, err),
			"Fix the file or re-create it with 'cie init --force'",
			err,
		)
	}
	if cfg.RepoID == "" {
		return nil, cliErrors.NewConfigError(
			"Project configuration is incomplete",
			"repo_id is missing from "+path,
			"Set repo_id, or re-create the file with 'cie init --force'",
			nil,
		)
	}
	return &cfg, nil
}

// resolveDataDir returns the directory holding this project's snapshots
// and workspace database, creating it if needed.
func (c *Config) resolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".cie", "data", c.RepoID)
	}
	if err := os.MkdirAll(filepath.Join(dir, "snapshots"), 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

// projectState is the small bookkeeping record index runs maintain next
// to the snapshot files: which snapshot is current, which git revision
// it was built from, and the root workspace executions attach to.
type projectState struct {
	WorkspaceID      string `json:"workspace_id,omitempty"`
	LatestSnapshotID string `json:"latest_snapshot_id,omitempty"`
	RepoRevision     string `json:"repo_revision,omitempty"`
}

func statePath(dataDir string) string { return filepath.Join(dataDir, "state.json") }

func loadState(dataDir string) (*projectState, error) {
	data, err := os.ReadFile(statePath(dataDir))
	if os.IsNotExist(err) {
		return &projectState{}, nil
	}
	if err != nil {
		return nil, err
	}
	var st projectState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse %s: %w", statePath(dataDir), err)
	}
	return &st, nil
}

func saveState(dataDir string, st *projectState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(statePath(dataDir), data, 0o644)
}

// snapshotPath locates one serialized IRDocument.
func snapshotPath(dataDir, snapshotID string) string {
	return filepath.Join(dataDir, "snapshots", snapshotID+".json")
}
