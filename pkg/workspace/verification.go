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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// VerificationSnapshot pins the exact engine, ruleset, policy, index,
// and repo state an execution ran against. Two executions carrying
// identical snapshots on the same workspace are the determinism
// contract: they must produce byte-equal findings.
type VerificationSnapshot struct {
	EngineVersion   string `json:"engine_version"`
	RulesetHash     string `json:"ruleset_hash"`
	PoliciesHash    string `json:"policies_hash"`
	IndexSnapshotID string `json:"index_snapshot_id"`
	RepoRevision    string `json:"repo_revision"`
}

// ComputeHash returns the sha256:<12 hex chars> prefix form used for
// ruleset_hash and policies_hash values.
func ComputeHash(content []byte) string {
	sum := sha256.Sum256(content)
	return "sha256:" + hex.EncodeToString(sum[:])[:12]
}

// Equal reports whether two snapshots pin the exact same execution
// context, the condition the determinism contract is keyed on.
func (s VerificationSnapshot) Equal(other VerificationSnapshot) bool {
	return s == other
}

func (s VerificationSnapshot) String() string {
	return fmt.Sprintf("engine=%s ruleset=%s policies=%s index=%s revision=%s",
		s.EngineVersion, s.RulesetHash, s.PoliciesHash, s.IndexSnapshotID, s.RepoRevision)
}
