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
	"strings"
	"testing"
)

func TestComputeHash_ProducesSha256TwelveCharPrefix(t *testing.T) {
	h := ComputeHash([]byte("ruleset contents"))
	if !strings.HasPrefix(h, "sha256:") {
		t.Fatalf("expected sha256: prefix, got %q", h)
	}
	if len(h) != len("sha256:")+12 {
		t.Fatalf("expected 12 hex chars after prefix, got %q (len %d)", h, len(h))
	}
}

func TestComputeHash_IsDeterministic(t *testing.T) {
	a := ComputeHash([]byte("same content"))
	b := ComputeHash([]byte("same content"))
	if a != b {
		t.Fatalf("expected identical content to hash identically, got %q and %q", a, b)
	}
}

func TestVerificationSnapshot_EqualRequiresAllFieldsToMatch(t *testing.T) {
	a := VerificationSnapshot{EngineVersion: "1.0", RulesetHash: "sha256:abc", PoliciesHash: "sha256:def", IndexSnapshotID: "idx1", RepoRevision: "rev1"}
	b := a
	if !a.Equal(b) {
		t.Fatal("expected identical snapshots to be equal")
	}
	b.RepoRevision = "rev2"
	if a.Equal(b) {
		t.Fatal("expected snapshots differing by repo_revision to be unequal")
	}
}
