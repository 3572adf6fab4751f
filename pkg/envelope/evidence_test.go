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

import "testing"

func validEvidence() Evidence {
	return Evidence{
		ID:   "ev_1",
		Kind: EvidenceCodeSnippet,
		Location: Location{
			FilePath:  "pkg/handler/login.go",
			StartLine: 10,
			EndLine:   12,
		},
		Content:    map[string]any{"snippet": "db.Query(userInput)"},
		Provenance: Provenance{Engine: "cie", Version: "1.2.0"},
		ClaimIDs:   []string{"claim_1"},
	}
}

func TestValidateEvidence_AcceptsWellFormedEvidence(t *testing.T) {
	if err := validateEvidence(validEvidence()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateEvidence_RejectsPathTraversal(t *testing.T) {
	e := validEvidence()
	e.Location.FilePath = "../../etc/passwd"
	if err := validateEvidence(e); err == nil {
		t.Fatal("expected error for path traversal")
	}
}

func TestValidateEvidence_RejectsAbsolutePath(t *testing.T) {
	e := validEvidence()
	e.Location.FilePath = "/etc/passwd"
	if err := validateEvidence(e); err == nil {
		t.Fatal("expected error for absolute path")
	}
}

func TestValidateEvidence_DataFlowPathRequiresSourceSinkPath(t *testing.T) {
	e := validEvidence()
	e.Kind = EvidenceDataFlowPath
	e.Content = map[string]any{"source": "request.args"}
	if err := validateEvidence(e); err == nil {
		t.Fatal("expected error for missing sink/path keys")
	}
	e.Content = map[string]any{"source": "request.args", "sink": "db.Query", "path": []any{"a", "b"}}
	if err := validateEvidence(e); err != nil {
		t.Fatalf("expected no error once all keys present, got %v", err)
	}
}

func TestValidateEvidence_CostTermRequiresListLoopBounds(t *testing.T) {
	e := validEvidence()
	e.Kind = EvidenceCostTerm
	e.Content = map[string]any{"cost_term": "O(n^2)", "loop_bounds": "not a list"}
	if err := validateEvidence(e); err == nil {
		t.Fatal("expected error for non-list loop_bounds")
	}
	e.Content = map[string]any{"cost_term": "O(n^2)", "loop_bounds": []any{"n", "m"}}
	if err := validateEvidence(e); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateEvidence_RaceWitnessRequiresSharedVariableAccessesInterleaving(t *testing.T) {
	e := validEvidence()
	e.Kind = EvidenceRaceWitness
	e.Content = map[string]any{"shared_variable": "counter"}
	if err := validateEvidence(e); err == nil {
		t.Fatal("expected error for missing accesses/interleaving_path")
	}
}

func TestValidateEvidence_RejectsEmptyClaimIDs(t *testing.T) {
	e := validEvidence()
	e.ClaimIDs = nil
	if err := validateEvidence(e); err == nil {
		t.Fatal("expected error for empty claim_ids")
	}
}

func TestValidateEvidence_RejectsInvalidProvenanceVersion(t *testing.T) {
	e := validEvidence()
	e.Provenance.Version = "not-a-semver"
	if err := validateEvidence(e); err == nil {
		t.Fatal("expected error for invalid provenance version")
	}
}
