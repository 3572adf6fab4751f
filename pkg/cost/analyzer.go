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

package cost

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kraklabs/cie/pkg/ir"
)

// Analyzer infers per-function complexity verdicts. Its cache is a
// struct field, not a package global, so two Analyzer instances never
// share cache entries.
type Analyzer struct {
	cache *sync.Map // key: snapshotID + "|" + function node ID (a hash over the FQN) -> *Verdict
}

// NewAnalyzer builds an Analyzer with its own private cache.
func NewAnalyzer() *Analyzer {
	return &Analyzer{cache: &sync.Map{}}
}

func cacheKey(snapshotID, functionFQN string) string {
	return snapshotID + "|" + functionFQN
}

// AnalyzeFunction walks fn's LoopHeader CFG blocks and produces a
// Verdict. Results are memoized per (snapshot_id, function node ID), the
// node ID being derived from the function's FQN, when the document
// carries a non-empty snapshot ID.
func (a *Analyzer) AnalyzeFunction(doc *ir.IRDocument, fn *ir.Node) (*Verdict, error) {
	if fn == nil {
		return nil, fmt.Errorf("cost: nil function node")
	}
	key := cacheKey(doc.SnapshotID, fn.ID)
	if doc.SnapshotID != "" {
		if cached, ok := a.cache.Load(key); ok {
			return cached.(*Verdict), nil
		}
	}

	exprByID := make(map[string]*ir.Expression, len(doc.Expressions))
	for i := range doc.Expressions {
		exprByID[doc.Expressions[i].ID] = &doc.Expressions[i]
	}

	var loopBlocks []*ir.CFGBlock
	for i := range doc.CFGBlocks {
		b := &doc.CFGBlocks[i]
		if b.FunctionNodeID == fn.ID && b.Kind == ir.CFGBlockLoopHead {
			loopBlocks = append(loopBlocks, b)
		}
	}

	verdict := &Verdict{FunctionNodeID: fn.ID, Complexity: ComplexityConstant, Basis: BasisProven}
	for _, block := range loopBlocks {
		finding := a.analyzeLoop(doc, exprByID, block, loopBlocks)
		verdict.Loops = append(verdict.Loops, finding)
		if worse(finding.Basis, verdict.Basis) || len(verdict.Loops) == 1 {
			verdict.Basis = finding.Basis
		}
		if rankComplexity(finding.Complexity) > rankComplexity(verdict.Complexity) {
			verdict.Complexity = finding.Complexity
		}
	}
	verdict.Hotspots = outermostHotspots(loopBlocks, verdict.Loops)

	if doc.SnapshotID != "" {
		a.cache.Store(key, verdict)
	}
	return verdict, nil
}

func (a *Analyzer) analyzeLoop(doc *ir.IRDocument, exprByID map[string]*ir.Expression, block *ir.CFGBlock, all []*ir.CFGBlock) LoopFinding {
	depth := nestingDepth(block, all)
	finding := LoopFinding{LoopHeaderBlockID: block.ID, NestingDepth: depth, Bound: unresolvedBound, Basis: BasisHeuristic}
	if block.Span != nil {
		finding.Line = block.Span.StartLine
	}
	if len(block.StatementExprIDs) == 0 {
		finding.Complexity = classify(finding.Bound, depth, false)
		return finding
	}
	bound, basis := extractBound(exprByID, block.StatementExprIDs[0])
	finding.Bound = bound
	finding.Basis = basis
	finding.Complexity = classify(bound, depth, loopBodyCallsSort(doc, block))
	return finding
}

// nestingDepth counts how many sibling loop headers in the same
// function enclose this one by span containment, 1-indexed so an
// unnested loop has depth 1.
func nestingDepth(block *ir.CFGBlock, all []*ir.CFGBlock) int {
	depth := 1
	if block.Span == nil {
		return depth
	}
	for _, other := range all {
		if other.ID == block.ID || other.Span == nil {
			continue
		}
		if other.Span.StartLine <= block.Span.StartLine && other.Span.EndLine >= block.Span.EndLine &&
			other.Span.StartLine != block.Span.StartLine {
			depth++
		}
	}
	return depth
}

// loopBodyCallsSort reports whether any expression lexically inside the
// loop's span calls a sort-like routine, the one signal this analyzer
// uses to promote Linear to Linearithmic.
func loopBodyCallsSort(doc *ir.IRDocument, block *ir.CFGBlock) bool {
	if block.Span == nil {
		return false
	}
	for i := range doc.Expressions {
		e := &doc.Expressions[i]
		if e.FunctionNodeID != block.FunctionNodeID || e.Kind != ir.ExprKindCall {
			continue
		}
		if e.Span.StartLine < block.Span.StartLine || e.Span.StartLine > block.Span.EndLine {
			continue
		}
		if strings.Contains(strings.ToLower(e.CalleeName), "sort") {
			return true
		}
	}
	return false
}

func isNumericLiteral(bound string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(bound), 64)
	return err == nil
}

// classify derives a ComplexityClass from a loop's resolved bound text,
// its nesting depth, and whether its body sorts. Exponential is never
// produced here: that classification requires recursive-call detection,
// which this analyzer does not perform.
func classify(bound string, depth int, callsSort bool) ComplexityClass {
	switch {
	case isNumericLiteral(bound) && depth == 1:
		return ComplexityConstant
	case isHalvingBound(bound):
		return ComplexityLogarithmic
	case callsSort && depth == 1:
		return ComplexityLinearithmic
	case depth <= 1:
		return ComplexityLinear
	default:
		return ComplexityPolynomial
	}
}

var complexityRank = map[ComplexityClass]int{
	ComplexityConstant:     0,
	ComplexityLogarithmic:  1,
	ComplexityLinear:       2,
	ComplexityLinearithmic: 3,
	ComplexityPolynomial:   4,
	ComplexityExponential:  5,
}

func rankComplexity(c ComplexityClass) int { return complexityRank[c] }

// outermostHotspots reports (line, reason) pairs for loops with no
// enclosing loop among all, the top-level entry points a reviewer would
// actually look at first.
func outermostHotspots(all []*ir.CFGBlock, findings []LoopFinding) []Hotspot {
	byBlock := make(map[string]LoopFinding, len(findings))
	for _, f := range findings {
		byBlock[f.LoopHeaderBlockID] = f
	}
	var hotspots []Hotspot
	for _, block := range all {
		f, ok := byBlock[block.ID]
		if !ok || f.NestingDepth != 1 {
			continue
		}
		hotspots = append(hotspots, Hotspot{
			Line:   f.Line,
			Reason: fmt.Sprintf("loop bound %q classified %s (%s)", f.Bound, f.Complexity, f.Basis),
		})
	}
	sort.Slice(hotspots, func(i, j int) bool { return hotspots[i].Line < hotspots[j].Line })
	return hotspots
}
