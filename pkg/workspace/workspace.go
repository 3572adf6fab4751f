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
	"fmt"

	"github.com/google/uuid"
)

// FilePatch is one file's overlay content inside a PatchSet, applied
// relative to the parent workspace's view of that file.
type FilePatch struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// PatchSet is an immutable overlay of file changes applied to a parent
// workspace, carrying the three verification booleans a child workspace
// revision is gated on.
type PatchSet struct {
	ID               string      `json:"id"`
	Patches          []FilePatch `json:"patches"`
	CompileVerified  bool        `json:"compile_verified"`
	FindingResolved  bool        `json:"finding_resolved"`
	NoRegression     bool        `json:"no_regression"`
}

// NewPatchSet builds an unverified patchset; the three verification
// booleans default false until a verifier sets them explicitly.
func NewPatchSet(patches []FilePatch) *PatchSet {
	return &PatchSet{ID: "patchset_" + uuid.NewString(), Patches: patches}
}

// Verified reports whether all three verification booleans hold.
func (p *PatchSet) Verified() bool {
	return p.CompileVerified && p.FindingResolved && p.NoRegression
}

// Workspace is an immutable revision of a repo: either the root
// revision of a repo_id, or a child produced by applying a patchset on
// top of a parent. Workspaces are never mutated after creation; a new
// revision is always a new Workspace value referring back to its parent.
type Workspace struct {
	ID               string         `json:"workspace_id"`
	RepoID           string         `json:"repo_id"`
	Revision         int            `json:"revision"`
	ParentWorkspaceID string        `json:"parent_workspace_id,omitempty"`
	PatchSetID       string         `json:"patchset_id,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// NewRootWorkspace creates revision 0 of a repo, with no parent and no
// patchset.
func NewRootWorkspace(repoID string, metadata map[string]any) *Workspace {
	return &Workspace{
		ID:       "ws_" + uuid.NewString(),
		RepoID:   repoID,
		Revision: 0,
		Metadata: metadata,
	}
}

// deriveChild builds the next revision's value object; it does not
// persist anything. Store.CreateChildWorkspace wraps this with
// validation and persistence.
func deriveChild(parent *Workspace, patchset *PatchSet) *Workspace {
	return &Workspace{
		ID:                "ws_" + uuid.NewString(),
		RepoID:            parent.RepoID,
		Revision:          parent.Revision + 1,
		ParentWorkspaceID: parent.ID,
		PatchSetID:        patchset.ID,
		Metadata:          parent.Metadata,
	}
}

// ErrPatchSetNotVerified is returned when CreateChildWorkspace is asked
// to cut a new revision from a patchset that has not cleared all three
// verification gates.
var ErrPatchSetNotVerified = fmt.Errorf("workspace: patchset is not fully verified")
