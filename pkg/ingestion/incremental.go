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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/structural"
	"github.com/kraklabs/cie/pkg/typeenrich"
)

// RunIncremental rebuilds only the parts of prev that baseRef..headRef
// touched, producing a fresh document under snapshotID. Entities of
// unchanged files carry over with their IDs intact (IDs hash repo, kind,
// path and FQN, none of which an unrelated change can alter); entities
// of modified, deleted and renamed files are dropped and, where the file
// still exists, rebuilt by the same stages a full Run uses.
//
// repoPath must be a git work tree containing the already-checked-out
// head revision. An empty baseRef degrades to a full ingestion of every
// tracked file.
func (p *Pipeline) RunIncremental(ctx context.Context, prev *ir.IRDocument, repoPath, baseRef, headRef, snapshotID string) (*Result, *GitDelta, error) {
	ingMetrics.init()
	start := time.Now()

	detector := NewDeltaDetector(repoPath, p.logger)
	if !detector.IsGitRepository() {
		return nil, nil, fmt.Errorf("incremental run: %s is not a git repository", repoPath)
	}
	delta, err := detector.Detect(baseRef, headRef)
	if err != nil {
		return nil, nil, fmt.Errorf("incremental run: %w", err)
	}
	filtered := delta.Filter(p.config.ExcludeGlobs, p.config.MaxFileSize, repoPath)

	doc := ir.NewIRDocument(prev.SchemaVersion, prev.RepoID, snapshotID)
	result := &Result{Doc: doc, SkipReasons: map[string]int{}}

	invalid := make(map[string]bool, len(filtered.All))
	for _, path := range filtered.Invalidated() {
		invalid[filepath.ToSlash(path)] = true
	}
	if baseRef != "" {
		carryUnchanged(prev, doc, invalid)
	}

	var files []FileInfo
	for _, rel := range filtered.Reingest() {
		full := filepath.Join(repoPath, rel)
		info, err := os.Stat(full)
		if err != nil {
			result.SkipReasons["missing"]++
			continue
		}
		files = append(files, FileInfo{
			Path:     filepath.ToSlash(rel),
			FullPath: full,
			Size:     info.Size(),
			Language: detectLanguageFromPath(rel),
		})
	}

	units, err := p.parseAndLower(ctx, files, doc, result)
	if err != nil {
		return nil, filtered, err
	}

	semanticStart := time.Now()
	p.runSemantic(units, doc, result)
	result.SemanticDuration = time.Since(semanticStart)
	ingMetrics.semanticDuration.Observe(result.SemanticDuration.Seconds())

	// Cross-language edges span files, so the carried subset cannot be
	// trusted; carryUnchanged drops them all and they are recomputed over
	// the merged document here.
	languageByFileNode := make(map[string]string)
	for i := range doc.Nodes {
		if doc.Nodes[i].Kind == ir.NodeKindFile {
			languageByFileNode[doc.Nodes[i].ID] = doc.Nodes[i].Language
		}
	}
	doc.Edges = append(doc.Edges, structural.DetectCrossLanguage(doc, func(fileNodeID string) string {
		return languageByFileNode[fileNodeID]
	})...)

	p.emitOccurrences(units, doc, result)

	if p.config.EnableEnrich {
		enrichStart := time.Now()
		enricher := typeenrich.NewEnricher()
		report, err := enricher.Run(ctx, []*ir.IRDocument{doc}, typeenrich.Options{ReadFile: p.config.ReadFile})
		result.EnrichDuration = time.Since(enrichStart)
		ingMetrics.enrichDuration.Observe(result.EnrichDuration.Seconds())
		if err != nil {
			return result, filtered, fmt.Errorf("type enrichment: %w", err)
		}
		result.Enrichment = report
	}

	doc.AssignLocalSeq()
	doc.EnforceTotalOrdering()

	result.TotalDuration = time.Since(start)
	ingMetrics.totalDuration.Observe(result.TotalDuration.Seconds())
	p.logger.Info("pipeline.incremental.complete",
		"changed", len(filtered.All),
		"reingested", result.FilesProcessed,
		"carried_nodes", len(doc.Nodes)-countNodesForFiles(doc, files),
		"total_duration", result.TotalDuration,
	)
	return result, filtered, nil
}

func countNodesForFiles(doc *ir.IRDocument, files []FileInfo) int {
	paths := make(map[string]bool, len(files))
	for _, f := range files {
		paths[f.Path] = true
	}
	n := 0
	for i := range doc.Nodes {
		if paths[doc.Nodes[i].FilePath] {
			n++
		}
	}
	return n
}

// carryUnchanged copies every layer entry of prev that does not belong
// to an invalidated file into doc. Carried entries have LocalSeq zeroed
// so AssignLocalSeq re-stamps the merged document with one dense
// sequence; the stable hash IDs are what identity rests on, not the
// per-document ordering tie-breaker.
//
// Analysis layers (PDG, taint findings) are never carried: they are
// produced on demand by pkg/analyzer against a finished document, and a
// stale slice mixing old and new function IDs would be worse than an
// empty one.
func carryUnchanged(prev, doc *ir.IRDocument, invalid map[string]bool) {
	keptNode := make(map[string]bool, len(prev.Nodes))
	for i := range prev.Nodes {
		n := prev.Nodes[i]
		if invalid[n.FilePath] {
			continue
		}
		keptNode[n.ID] = true
		n.LocalSeq = 0
		doc.Nodes = append(doc.Nodes, n)
	}

	for i := range prev.Edges {
		e := prev.Edges[i]
		if e.Kind == ir.EdgeKindCrossLangImport || e.Kind == ir.EdgeKindFFIImport {
			continue
		}
		if !keptNode[e.SourceID] {
			continue
		}
		if !keptNode[e.TargetID] && !e.IsExternal() {
			continue
		}
		e.LocalSeq = 0
		doc.Edges = append(doc.Edges, e)
	}

	for i := range prev.Types {
		t := prev.Types[i]
		if t.NodeID != "" && !keptNode[t.NodeID] {
			continue
		}
		t.LocalSeq = 0
		doc.Types = append(doc.Types, t)
	}
	for i := range prev.Signatures {
		s := prev.Signatures[i]
		if !keptNode[s.NodeID] {
			continue
		}
		s.LocalSeq = 0
		doc.Signatures = append(doc.Signatures, s)
	}

	keptExpr := make(map[string]bool)
	for i := range prev.Expressions {
		ex := prev.Expressions[i]
		if !keptNode[ex.FunctionNodeID] {
			continue
		}
		keptExpr[ex.ID] = true
		ex.LocalSeq = 0
		doc.Expressions = append(doc.Expressions, ex)
	}

	keptBlock := make(map[string]bool)
	for i := range prev.CFGBlocks {
		b := prev.CFGBlocks[i]
		if !keptNode[b.FunctionNodeID] {
			continue
		}
		keptBlock[b.ID] = true
		b.LocalSeq = 0
		doc.CFGBlocks = append(doc.CFGBlocks, b)
	}
	for i := range prev.CFGEdges {
		e := prev.CFGEdges[i]
		if !keptBlock[e.FromID] || !keptBlock[e.ToID] {
			continue
		}
		e.LocalSeq = 0
		doc.CFGEdges = append(doc.CFGEdges, e)
	}
	for _, dt := range prev.DominatorTrees {
		if dt != nil && keptNode[dt.FunctionNodeID] {
			doc.DominatorTrees = append(doc.DominatorTrees, dt)
		}
	}

	keptVersion := make(map[string]bool)
	for i := range prev.DFG.Contexts {
		c := prev.DFG.Contexts[i]
		if !keptNode[c.FunctionNodeID] {
			continue
		}
		// Copy the versions slice before zeroing LocalSeq: the struct copy
		// above still shares its backing array with prev.
		versions := make([]ir.SSAVersion, len(c.Versions))
		copy(versions, c.Versions)
		for j := range versions {
			keptVersion[versions[j].ID] = true
			versions[j].LocalSeq = 0
		}
		c.Versions = versions
		doc.DFG.Contexts = append(doc.DFG.Contexts, c)
	}
	for i := range prev.DFG.Edges {
		e := prev.DFG.Edges[i]
		if !keptVersion[e.SSAVersionID] || !keptExpr[e.ExpressionID] {
			continue
		}
		e.LocalSeq = 0
		doc.DFG.Edges = append(doc.DFG.Edges, e)
	}
	for i := range prev.Interprocedural {
		e := prev.Interprocedural[i]
		if !keptExpr[e.CallExpressionID] || !keptNode[e.CalleeFunctionID] {
			continue
		}
		e.LocalSeq = 0
		doc.Interprocedural = append(doc.Interprocedural, e)
	}

	for i := range prev.Occurrences {
		o := prev.Occurrences[i]
		if invalid[o.FilePath] {
			continue
		}
		o.LocalSeq = 0
		doc.Occurrences = append(doc.Occurrences, o)
	}
	for i := range prev.TemplateSlots {
		s := prev.TemplateSlots[i]
		if !keptExpr[s.ExpressionID] {
			continue
		}
		s.LocalSeq = 0
		doc.TemplateSlots = append(doc.TemplateSlots, s)
	}
	for i := range prev.Diagnostics {
		d := prev.Diagnostics[i]
		if invalid[d.FilePath] {
			continue
		}
		doc.Diagnostics = append(doc.Diagnostics, d)
	}
}
