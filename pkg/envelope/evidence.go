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

package envelope

import (
	"regexp"
	"strings"
)

// EvidenceKind is the machine-readable shape of one piece of evidence.
type EvidenceKind string

const (
	EvidenceCodeSnippet  EvidenceKind = "code_snippet"
	EvidenceDataFlowPath EvidenceKind = "data_flow_path"
	EvidenceCallPath     EvidenceKind = "call_path"
	EvidenceDiff         EvidenceKind = "diff"
	EvidenceTestResult   EvidenceKind = "test_result"
	EvidenceCostTerm     EvidenceKind = "cost_term"
	EvidenceLoopBound    EvidenceKind = "loop_bound"
	EvidenceRaceWitness  EvidenceKind = "race_witness"
	EvidenceLockRegion   EvidenceKind = "lock_region"
	EvidenceDiffDelta    EvidenceKind = "diff_delta"
)

// pendingClaimID is the sentinel Evidence.ClaimIDs may carry while a
// Builder is staging evidence ahead of the claim it supports. It never
// survives into a built Envelope.
const pendingClaimID = "pending"

// Location is a span in a source file, relative to the repo root.
type Location struct {
	FilePath  string `json:"file_path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	StartCol  int    `json:"start_col"`
	EndCol    int    `json:"end_col"`
}

func validateLocation(loc Location) error {
	if loc.FilePath == "" {
		return fieldErr("evidence.location.file_path", "must be non-empty")
	}
	if strings.Contains(loc.FilePath, "..") {
		return fieldErr("evidence.location.file_path", "path traversal detected: %q", loc.FilePath)
	}
	if strings.HasPrefix(loc.FilePath, "/") {
		return fieldErr("evidence.location.file_path", "absolute path not allowed: %q", loc.FilePath)
	}
	if loc.StartLine < 1 || loc.EndLine < loc.StartLine {
		return fieldErr("evidence.location", "invalid line range [%d,%d]", loc.StartLine, loc.EndLine)
	}
	if loc.StartLine == loc.EndLine && loc.EndCol > 0 && loc.EndCol < loc.StartCol {
		return fieldErr("evidence.location", "end_col (%d) must be >= start_col (%d) on the same line", loc.EndCol, loc.StartCol)
	}
	return nil
}

var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+`)

// Provenance tracks which engine produced a piece of evidence, and when.
type Provenance struct {
	Engine     string  `json:"engine"`
	Template   string  `json:"template,omitempty"`
	SnapshotID string  `json:"snapshot_id,omitempty"`
	Version    string  `json:"version,omitempty"`
	Timestamp  float64 `json:"timestamp,omitempty"`
}

func validateProvenance(p Provenance) error {
	if p.Engine == "" {
		return fieldErr("evidence.provenance.engine", "must be non-empty")
	}
	if p.Version != "" && !semverPattern.MatchString(p.Version) {
		return fieldErr("evidence.provenance.version", "invalid semver %q", p.Version)
	}
	return nil
}

// Evidence is machine-readable proof backing one or more Claims.
// Content is a free-form map whose required keys depend on Kind.
type Evidence struct {
	ID         string         `json:"id"`
	Kind       EvidenceKind   `json:"kind"`
	Location   Location       `json:"location"`
	Content    map[string]any `json:"content"`
	Provenance Provenance     `json:"provenance"`
	ClaimIDs   []string       `json:"claim_ids"`
}

func validateEvidence(e Evidence) error {
	if e.ID == "" || !claimIDPattern.MatchString(e.ID) {
		return fieldErr("evidence.id", "must be non-empty and match [a-zA-Z0-9_-]+, got %q", e.ID)
	}
	if err := validateLocation(e.Location); err != nil {
		return err
	}
	if len(e.Content) == 0 {
		return fieldErr("evidence.content", "must be non-empty")
	}
	if err := validateContentSchema(e.Kind, e.Content); err != nil {
		return err
	}
	if err := validateProvenance(e.Provenance); err != nil {
		return err
	}
	if len(e.ClaimIDs) == 0 {
		return fieldErr("evidence.claim_ids", "must reference at least one claim")
	}
	for _, id := range e.ClaimIDs {
		if isBlank(id) {
			return fieldErr("evidence.claim_ids", "contains an empty claim id")
		}
	}
	return nil
}

// validateContentSchema enforces the required keys for the evidence
// kinds that carry a structured payload; every other kind only requires
// non-empty content, already checked by the caller.
func validateContentSchema(kind EvidenceKind, content map[string]any) error {
	switch kind {
	case EvidenceDataFlowPath:
		return requireKeys("evidence.content", content, "source", "sink", "path")
	case EvidenceCostTerm:
		if err := requireKeys("evidence.content", content, "cost_term", "loop_bounds"); err != nil {
			return err
		}
		if _, ok := content["loop_bounds"].([]any); !ok {
			return fieldErr("evidence.content.loop_bounds", "must be a list")
		}
		return nil
	case EvidenceRaceWitness:
		return requireKeys("evidence.content", content, "shared_variable", "accesses", "interleaving_path")
	default:
		return nil
	}
}

func requireKeys(field string, content map[string]any, keys ...string) error {
	for _, k := range keys {
		if _, ok := content[k]; !ok {
			return fieldErr(field, "%s requires %q", field, k)
		}
	}
	return nil
}
