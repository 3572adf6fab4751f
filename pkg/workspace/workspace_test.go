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

import "testing"

func TestNewRootWorkspace_StartsAtRevisionZeroWithNoParent(t *testing.T) {
	ws := NewRootWorkspace("repo1", nil)
	if ws.Revision != 0 {
		t.Fatalf("expected revision 0, got %d", ws.Revision)
	}
	if ws.ParentWorkspaceID != "" {
		t.Fatal("expected root workspace to have no parent")
	}
}

func TestPatchSet_VerifiedRequiresAllThreeBooleans(t *testing.T) {
	p := NewPatchSet([]FilePatch{{FilePath: "a.go", Content: "package a"}})
	if p.Verified() {
		t.Fatal("expected freshly created patchset to be unverified")
	}
	p.CompileVerified = true
	p.FindingResolved = true
	if p.Verified() {
		t.Fatal("expected patchset missing no_regression to still be unverified")
	}
	p.NoRegression = true
	if !p.Verified() {
		t.Fatal("expected patchset with all three booleans set to be verified")
	}
}

func TestDeriveChild_IncrementsRevisionAndLinksParent(t *testing.T) {
	parent := NewRootWorkspace("repo1", map[string]any{"owner": "team-x"})
	patchset := NewPatchSet(nil)
	child := deriveChild(parent, patchset)

	if child.Revision != parent.Revision+1 {
		t.Fatalf("expected revision %d, got %d", parent.Revision+1, child.Revision)
	}
	if child.ParentWorkspaceID != parent.ID {
		t.Fatalf("expected parent_workspace_id %q, got %q", parent.ID, child.ParentWorkspaceID)
	}
	if child.PatchSetID != patchset.ID {
		t.Fatalf("expected patchset_id %q, got %q", patchset.ID, child.PatchSetID)
	}
	if child.RepoID != parent.RepoID {
		t.Fatal("expected child to inherit repo_id from parent")
	}
}
