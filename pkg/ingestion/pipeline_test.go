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

package ingestion

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/cie/pkg/ir"
)

func runPipeline(t *testing.T, root, snapshotID string) *Result {
	t.Helper()
	p := NewPipeline(Config{
		RepoID:        "test-repo",
		SchemaVersion: "2.3",
		Concurrency:   4,
	}, nil)
	t.Cleanup(func() { _ = p.Close() })

	result, err := p.Run(context.Background(), RepoSource{Type: "local_path", Value: root}, snapshotID)
	require.NoError(t, err)
	return result
}

func sampleProjectDir(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("testdata", "sample_project"))
	require.NoError(t, err)
	return abs
}

func TestPipelineRunSampleProject(t *testing.T) {
	result := runPipeline(t, sampleProjectDir(t), "s1")
	doc := result.Doc

	require.Equal(t, "test-repo", doc.RepoID)
	require.Equal(t, "s1", doc.SnapshotID)
	require.GreaterOrEqual(t, result.FilesProcessed, 2)
	require.Greater(t, result.FunctionsLowered, 0)
	require.Greater(t, result.OccurrencesEmitted, 0)

	byName := map[string]*ir.Node{}
	for i := range doc.Nodes {
		byName[doc.Nodes[i].Name] = &doc.Nodes[i]
	}
	require.Contains(t, byName, "main")
	require.Contains(t, byName, "HandleHealth")

	// Lowered functions have CFG blocks and dominator trees.
	require.NotEmpty(t, doc.CFGBlocks)
	require.NotEmpty(t, doc.DominatorTrees)
	fnWithTree := map[string]bool{}
	for _, dt := range doc.DominatorTrees {
		fnWithTree[dt.FunctionNodeID] = true
	}
	for i := range doc.CFGBlocks {
		require.True(t, fnWithTree[doc.CFGBlocks[i].FunctionNodeID],
			"function %s has blocks but no dominator tree", doc.CFGBlocks[i].FunctionNodeID)
	}
}

func TestPipelineDeterminism(t *testing.T) {
	root := sampleProjectDir(t)

	first := runPipeline(t, root, "s1")
	second := runPipeline(t, root, "s1")

	a, err := json.Marshal(first.Doc)
	require.NoError(t, err)
	b, err := json.Marshal(second.Doc)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b), "two runs over identical input must serialize identically")
}

func TestPipelineIdentityStability(t *testing.T) {
	src, err := os.ReadFile(filepath.Join(sampleProjectDir(t), "main.go"))
	require.NoError(t, err)

	dirA := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "main.go"), src, 0o644))

	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "main.go"), src, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "extra.go"),
		[]byte("package main\n\nfunc Extra() int { return 1 }\n"), 0o644))

	idsFor := func(doc *ir.IRDocument, path string) map[string]bool {
		ids := map[string]bool{}
		for i := range doc.Nodes {
			if doc.Nodes[i].FilePath == path {
				ids[doc.Nodes[i].ID] = true
			}
		}
		return ids
	}

	alone := runPipeline(t, dirA, "s1")
	together := runPipeline(t, dirB, "s1")

	require.Equal(t, idsFor(alone.Doc, "main.go"), idsFor(together.Doc, "main.go"),
		"adding an unrelated file must not change existing node IDs")
}

func TestRunIncremental(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	gitRun(t, dir, "init", "-q")

	mainSrc, err := os.ReadFile(filepath.Join(sampleProjectDir(t), "main.go"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), mainSrc, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gone.go"),
		[]byte("package main\n\nfunc Gone() {}\n"), 0o644))
	gitRun(t, dir, "add", ".")
	gitRun(t, dir, "commit", "-q", "-m", "initial")

	p := NewPipeline(Config{RepoID: "test-repo", SchemaVersion: "2.3", Concurrency: 2}, nil)
	defer p.Close()

	full, err := p.Run(context.Background(), RepoSource{Type: "local_path", Value: dir}, "s1")
	require.NoError(t, err)

	base, err := NewDeltaDetector(dir, nil).HeadRevision()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "added.go"),
		[]byte("package main\n\nfunc Added() string { return \"x\" }\n"), 0o644))
	require.NoError(t, os.Remove(filepath.Join(dir, "gone.go")))
	gitRun(t, dir, "add", "-A")
	gitRun(t, dir, "commit", "-q", "-m", "second")

	result, delta, err := p.RunIncremental(context.Background(), full.Doc, dir, base, "", "s2")
	require.NoError(t, err)
	require.Equal(t, []string{"added.go"}, delta.Added)
	require.Equal(t, []string{"gone.go"}, delta.Deleted)

	doc := result.Doc
	require.Equal(t, "s2", doc.SnapshotID)

	var keptMainIDs, fullMainIDs []string
	for i := range doc.Nodes {
		n := doc.Nodes[i]
		require.NotEqual(t, "gone.go", n.FilePath, "deleted file's nodes must be dropped")
		if n.FilePath == "main.go" {
			keptMainIDs = append(keptMainIDs, n.ID)
		}
	}
	for i := range full.Doc.Nodes {
		if full.Doc.Nodes[i].FilePath == "main.go" {
			fullMainIDs = append(fullMainIDs, full.Doc.Nodes[i].ID)
		}
	}
	require.ElementsMatch(t, fullMainIDs, keptMainIDs, "unchanged file's node IDs carry over")

	var sawAdded bool
	for i := range doc.Nodes {
		if doc.Nodes[i].FilePath == "added.go" && doc.Nodes[i].Name == "Added" {
			sawAdded = true
		}
	}
	require.True(t, sawAdded, "new file must be ingested")
}
