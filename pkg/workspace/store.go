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

package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// workspaceRow is the relational projection of a Workspace.
type workspaceRow struct {
	ID                string `gorm:"primaryKey;type:varchar(64)"`
	RepoID            string `gorm:"type:varchar(128);index"`
	Revision          int
	ParentWorkspaceID string `gorm:"type:varchar(64);index"`
	PatchSetID        string `gorm:"type:varchar(64)"`
	Metadata          string `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (workspaceRow) TableName() string { return "workspaces" }

// patchSetRow is the relational projection of a PatchSet.
type patchSetRow struct {
	ID              string `gorm:"primaryKey;type:varchar(64)"`
	Patches         string `gorm:"type:text"`
	CompileVerified bool
	FindingResolved bool
	NoRegression    bool
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (patchSetRow) TableName() string { return "patchsets" }

// executionRow is the relational projection of an Execution, carrying
// the serialized IRDocument result blob alongside its metadata.
type executionRow struct {
	ID                string    `gorm:"primaryKey;type:varchar(64)"`
	WorkspaceID       string    `gorm:"type:varchar(64);index"`
	SpecType          string    `gorm:"type:varchar(32)"`
	State             string    `gorm:"type:varchar(16);index"`
	TraceID           string    `gorm:"type:varchar(64)"`
	EngineVersion     string    `gorm:"type:varchar(32)"`
	RulesetHash       string    `gorm:"type:varchar(32)"`
	PoliciesHash      string    `gorm:"type:varchar(32)"`
	IndexSnapshotID   string    `gorm:"type:varchar(64)"`
	RepoRevision      string    `gorm:"type:varchar(64)"`
	AgentMetadata     string    `gorm:"type:text"`
	ResultDocument    []byte    `gorm:"type:blob"`
	Error             string    `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	CompletedAt       *time.Time
}

func (executionRow) TableName() string { return "executions" }

// Connect opens a gorm/glebarez-sqlite connection at dsn and runs
// AutoMigrate, mirroring the directory-creation + logger setup pattern
// a file-backed SQLite connection needs.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("workspace: create database directory: %w", err)
		}
	}

	config := &gorm.Config{}
	if debug {
		config.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("workspace: connect: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("workspace: migrate: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the workspace/patchset/execution tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&workspaceRow{}, &patchSetRow{}, &executionRow{})
}

// Store persists Workspace, PatchSet, and Execution records. It is the
// only component in this package allowed to touch the database;
// Workspace/PatchSet/Execution themselves stay plain immutable values.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an already-migrated gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SavePatchSet persists a patchset ahead of the child workspace that
// will reference it.
func (s *Store) SavePatchSet(p *PatchSet) error {
	patchesJSON, err := json.Marshal(p.Patches)
	if err != nil {
		return fmt.Errorf("workspace: marshal patches: %w", err)
	}
	row := patchSetRow{
		ID:              p.ID,
		Patches:         string(patchesJSON),
		CompileVerified: p.CompileVerified,
		FindingResolved: p.FindingResolved,
		NoRegression:    p.NoRegression,
	}
	return s.db.Create(&row).Error
}

// SaveRootWorkspace persists a freshly created root workspace.
func (s *Store) SaveRootWorkspace(w *Workspace) error {
	return s.saveWorkspace(w)
}

func (s *Store) saveWorkspace(w *Workspace) error {
	metaJSON, err := json.Marshal(w.Metadata)
	if err != nil {
		return fmt.Errorf("workspace: marshal metadata: %w", err)
	}
	row := workspaceRow{
		ID:                w.ID,
		RepoID:            w.RepoID,
		Revision:          w.Revision,
		ParentWorkspaceID: w.ParentWorkspaceID,
		PatchSetID:        w.PatchSetID,
		Metadata:          string(metaJSON),
	}
	return s.db.Create(&row).Error
}

// CreateChildWorkspace produces and persists the next revision of
// parent by applying patchset as an overlay. The patchset must already
// be fully verified: no workspace revision is ever cut from an
// unverified change.
func (s *Store) CreateChildWorkspace(parent *Workspace, patchset *PatchSet) (*Workspace, error) {
	if parent == nil {
		return nil, fmt.Errorf("workspace: parent workspace is nil")
	}
	if patchset == nil {
		return nil, fmt.Errorf("workspace: patchset is nil")
	}
	if !patchset.Verified() {
		return nil, ErrPatchSetNotVerified
	}

	child := deriveChild(parent, patchset)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		txStore := &Store{db: tx}
		if err := txStore.SavePatchSet(patchset); err != nil {
			return err
		}
		return txStore.saveWorkspace(child)
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// LoadWorkspace reconstructs a Workspace value by id.
func (s *Store) LoadWorkspace(id string) (*Workspace, error) {
	var row workspaceRow
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("workspace: load %s: %w", id, err)
	}
	var meta map[string]any
	if row.Metadata != "" {
		if err := json.Unmarshal([]byte(row.Metadata), &meta); err != nil {
			return nil, fmt.Errorf("workspace: unmarshal metadata: %w", err)
		}
	}
	return &Workspace{
		ID:                row.ID,
		RepoID:            row.RepoID,
		Revision:          row.Revision,
		ParentWorkspaceID: row.ParentWorkspaceID,
		PatchSetID:        row.PatchSetID,
		Metadata:          meta,
	}, nil
}
