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

	cliErrors "github.com/kraklabs/cie/internal/errors"
	"github.com/kraklabs/cie/pkg/ir"
)

// saveSnapshotDoc serializes doc (already totally ordered by the
// pipeline) to its snapshot file.
func saveSnapshotDoc(dataDir string, doc *ir.IRDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	return os.WriteFile(snapshotPath(dataDir, doc.SnapshotID), data, 0o644)
}

// loadSnapshotDoc reads one snapshot's IRDocument back.
func loadSnapshotDoc(dataDir, snapshotID string) (*ir.IRDocument, error) {
	data, err := os.ReadFile(snapshotPath(dataDir, snapshotID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cliErrors.NewNotFoundError(
				"Snapshot not found",
				fmt.Sprintf("No snapshot %q under %s", snapshotID, dataDir),
				"Run 'cie index' first",
			)
		}
		return nil, cliErrors.NewStorageError("Cannot read snapshot", err.Error(), "", err)
	}
	var doc ir.IRDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, cliErrors.NewStorageError(
			"Snapshot file is corrupt",
			fmt.Sprintf("%s does not contain a valid IR document: %v", snapshotPath(dataDir, snapshotID), err),
			"Re-run 'cie index' to rebuild it",
			err,
		)
	}
	return &doc, nil
}

// loadLatestDoc resolves the project's current snapshot via state.json.
func loadLatestDoc(cfg *Config) (*ir.IRDocument, string, error) {
	dataDir, err := cfg.resolveDataDir()
	if err != nil {
		return nil, "", cliErrors.NewStorageError("Cannot resolve data directory", err.Error(), "", err)
	}
	st, err := loadState(dataDir)
	if err != nil {
		return nil, "", cliErrors.NewStorageError("Cannot read project state", err.Error(), "", err)
	}
	if st.LatestSnapshotID == "" {
		return nil, "", cliErrors.NewNotFoundError(
			"Project not indexed yet",
			fmt.Sprintf("No snapshot recorded for %q", cfg.RepoID),
			"Run 'cie index' first",
		)
	}
	doc, err := loadSnapshotDoc(dataDir, st.LatestSnapshotID)
	if err != nil {
		return nil, "", err
	}
	return doc, dataDir, nil
}
