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

package analyzer

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/cie/pkg/ir"
)

// AnalyzeOptions configures one UnifiedAnalyzer.Analyze call.
type AnalyzeOptions struct {
	// Mode selects the taint propagation strategy. Accepts the deprecated
	// "full" alias, normalized internally.
	Mode ir.TaintMode
	// EnableAlias turns on the optional may-alias registry enrichment.
	EnableAlias bool
	// Concurrency caps the number of functions analyzed in parallel; zero
	// means unbounded (errgroup spawns one goroutine per function).
	Concurrency int
}

// AnalysisResult is the set of layers UnifiedAnalyzer appends to an
// IRDocument for one Analyze call.
type AnalysisResult struct {
	PDGNodes      []ir.PDGNode
	PDGEdges      []ir.PDGEdge
	TaintFindings []ir.TaintFinding
}

// UnifiedAnalyzer builds the PDG and runs taint propagation over a
// complete IRDocument, one function at a time, fanning out across
// functions the same way pkg/cost's per-function analyses do.
type UnifiedAnalyzer struct {
	pdg    *PDGBuilder
	taint  *TaintAnalyzer
	guards *GuardDetector
}

// NewUnifiedAnalyzer constructs a ready-to-use UnifiedAnalyzer.
func NewUnifiedAnalyzer() *UnifiedAnalyzer {
	return &UnifiedAnalyzer{
		pdg:    NewPDGBuilder(),
		taint:  NewTaintAnalyzer(),
		guards: NewGuardDetector(),
	}
}

// Analyze builds the PDG for every function in doc, links the
// document's inter-procedural edges into it, and, if opts.Mode resolves
// to a valid taint mode, runs taint propagation per function over the
// merged graph so flows can cross call boundaries. Results are appended
// to doc's PDGNodes/PDGEdges/TaintFindings; doc's existing layers are
// read only.
func (u *UnifiedAnalyzer) Analyze(ctx context.Context, doc *ir.IRDocument, opts AnalyzeOptions) (*AnalysisResult, error) {
	mode, hasMode := ir.NormalizeTaintMode(opts.Mode)
	if opts.Mode != "" && !hasMode {
		return nil, fmt.Errorf("analyzer: unknown taint mode %q", opts.Mode)
	}

	idx := newDocIndex(doc)

	var fns []*ir.Node
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.Kind == ir.NodeKindFunction || n.Kind == ir.NodeKindMethod || n.Kind == ir.NodeKindArrowFunction {
			fns = append(fns, n)
		}
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].ID < fns[j].ID })

	type perFnResult struct {
		nodes []ir.PDGNode
		edges []ir.PDGEdge
	}
	built := make([]perFnResult, len(fns))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			nodes, edges := u.pdg.Build(idx, fn)
			built[i] = perFnResult{nodes: nodes, edges: edges}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &AnalysisResult{}
	existing := map[string]bool{}
	for _, r := range built {
		result.PDGNodes = append(result.PDGNodes, r.nodes...)
		result.PDGEdges = append(result.PDGEdges, r.edges...)
		for _, n := range r.nodes {
			existing[n.ID] = true
		}
	}
	linkNodes, linkEdges := u.pdg.LinkInterprocedural(idx, existing)
	result.PDGNodes = append(result.PDGNodes, linkNodes...)
	result.PDGEdges = append(result.PDGEdges, linkEdges...)

	if hasMode {
		findingsPerFn := make([][]ir.TaintFinding, len(fns))
		tg, tctx := errgroup.WithContext(ctx)
		if opts.Concurrency > 0 {
			tg.SetLimit(opts.Concurrency)
		}
		for i, fn := range fns {
			i, fn := i, fn
			tg.Go(func() error {
				select {
				case <-tctx.Done():
					return tctx.Err()
				default:
				}
				findings := u.taint.Analyze(idx, fn, mode, result.PDGNodes, result.PDGEdges)
				if opts.EnableAlias {
					reg := NewAliasRegistry()
					reg.Build(idx, fn)
					findings = reg.Enrich(idx, fn, findings, result.PDGEdges)
				}
				findingsPerFn[i] = findings
				return nil
			})
		}
		if err := tg.Wait(); err != nil {
			return nil, err
		}
		for _, findings := range findingsPerFn {
			result.TaintFindings = append(result.TaintFindings, findings...)
		}
	}

	doc.PDGNodes = append(doc.PDGNodes, result.PDGNodes...)
	doc.PDGEdges = append(doc.PDGEdges, result.PDGEdges...)
	doc.TaintFindings = append(doc.TaintFindings, result.TaintFindings...)

	return result, nil
}
