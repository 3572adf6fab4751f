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
	"time"

	"github.com/google/uuid"
)

// State is an Execution's lifecycle state.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

var validTransitions = map[State][]State{
	StatePending:   {StateRunning, StateCancelled},
	StateRunning:   {StateCompleted, StateFailed, StateCancelled},
	StateCompleted: {},
	StateFailed:    {},
	StateCancelled: {},
}

func (s State) canTransitionTo(next State) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Execution wraps one run of a spec against a workspace. Two
// Executions on the same workspace carrying identical
// VerificationSnapshot values are the determinism contract: they must
// serialize to byte-equal results.
type Execution struct {
	ID           string                `json:"execution_id"`
	WorkspaceID  string                `json:"workspace_id"`
	SpecType     string                `json:"spec_type"`
	State        State                 `json:"state"`
	TraceID      string                `json:"trace_id"`
	Snapshot     VerificationSnapshot  `json:"verification_snapshot"`
	AgentMetadata map[string]any       `json:"agent_metadata,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	CompletedAt  *time.Time            `json:"completed_at,omitempty"`
	Result       []byte                `json:"result,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// NewExecution starts a pending execution record.
func NewExecution(workspaceID, specType, traceID string, snapshot VerificationSnapshot) *Execution {
	return &Execution{
		ID:          "exec_" + uuid.NewString(),
		WorkspaceID: workspaceID,
		SpecType:    specType,
		State:       StatePending,
		TraceID:     traceID,
		Snapshot:    snapshot,
	}
}

// Transition moves the execution to next, rejecting any transition not
// in the documented state machine (e.g. completed -> running).
func (e *Execution) Transition(next State) error {
	if !e.State.canTransitionTo(next) {
		return fmt.Errorf("workspace: invalid execution transition %s -> %s", e.State, next)
	}
	e.State = next
	if next == StateCompleted || next == StateFailed || next == StateCancelled {
		now := completionTime()
		e.CompletedAt = &now
	}
	return nil
}

// completionTime is isolated so tests can stub it; production callers
// get wall-clock time.
var completionTime = func() time.Time { return time.Now() }

// SaveExecution persists an execution record, including its serialized
// result document if set.
func (s *Store) SaveExecution(e *Execution) error {
	agentJSON, err := json.Marshal(e.AgentMetadata)
	if err != nil {
		return fmt.Errorf("workspace: marshal agent_metadata: %w", err)
	}
	row := executionRow{
		ID:              e.ID,
		WorkspaceID:     e.WorkspaceID,
		SpecType:        e.SpecType,
		State:           string(e.State),
		TraceID:         e.TraceID,
		EngineVersion:   e.Snapshot.EngineVersion,
		RulesetHash:     e.Snapshot.RulesetHash,
		PoliciesHash:    e.Snapshot.PoliciesHash,
		IndexSnapshotID: e.Snapshot.IndexSnapshotID,
		RepoRevision:    e.Snapshot.RepoRevision,
		AgentMetadata:   string(agentJSON),
		ResultDocument:  e.Result,
		Error:           e.Error,
		CompletedAt:     e.CompletedAt,
	}
	return s.db.Save(&row).Error
}

// LoadExecution reconstructs an Execution value by id.
func (s *Store) LoadExecution(id string) (*Execution, error) {
	var row executionRow
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("workspace: load execution %s: %w", id, err)
	}
	var meta map[string]any
	if row.AgentMetadata != "" {
		if err := json.Unmarshal([]byte(row.AgentMetadata), &meta); err != nil {
			return nil, fmt.Errorf("workspace: unmarshal agent_metadata: %w", err)
		}
	}
	return &Execution{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		SpecType:    row.SpecType,
		State:       State(row.State),
		TraceID:     row.TraceID,
		Snapshot: VerificationSnapshot{
			EngineVersion:   row.EngineVersion,
			RulesetHash:     row.RulesetHash,
			PoliciesHash:    row.PoliciesHash,
			IndexSnapshotID: row.IndexSnapshotID,
			RepoRevision:    row.RepoRevision,
		},
		AgentMetadata: meta,
		CompletedAt:   row.CompletedAt,
		Result:        row.ResultDocument,
		Error:         row.Error,
	}, nil
}
