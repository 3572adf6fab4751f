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
	"strings"

	"github.com/kraklabs/cie/pkg/ir"
)

// heuristicSourceSubstrings and heuristicSinkSubstrings back the fallback
// classification used when the taint rule executor (pkg/taint) has not
// already tagged an expression with taint_source/taint_sink/taint_sanitizer
// attrs.
var (
	heuristicSourceSubstrings = []string{"input", "request", "argv", "environ"}
	heuristicSinkSubstrings   = []string{"execute", "eval", "exec", "system"}
)

func containsAny(haystack string, needles []string) bool {
	haystack = strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// nameOf returns the text an expression should be matched against for
// heuristic source/sink classification: the callee name for calls, the
// identifier text otherwise.
func nameOf(e *ir.Expression) string {
	if e.Kind == ir.ExprKindCall && e.CalleeName != "" {
		return e.CalleeName
	}
	return e.Text
}

func isTaintSource(e *ir.Expression) bool {
	if e.IsSource() {
		return true
	}
	return containsAny(nameOf(e), heuristicSourceSubstrings)
}

func isTaintSink(e *ir.Expression) bool {
	if e.IsSink() {
		return true
	}
	return containsAny(nameOf(e), heuristicSinkSubstrings)
}

func isSanitizer(e *ir.Expression) bool {
	return e.Attrs.BoolOr("taint_sanitizer", false)
}

// TaintAnalyzer runs one of the three taint propagation modes over a
// function's already-built program dependence graph.
type TaintAnalyzer struct {
	guards *GuardDetector
}

// NewTaintAnalyzer constructs a TaintAnalyzer with its own GuardDetector.
func NewTaintAnalyzer() *TaintAnalyzer {
	return &TaintAnalyzer{guards: NewGuardDetector()}
}

// pdgAdjacency builds a from-node -> [to-node] map over the given edges.
// It carries no sanitizer information; pathSanitized inspects a found
// path for sanitizer expressions afterwards.
func pdgAdjacency(edges []ir.PDGEdge) map[string][]string {
	adj := map[string][]string{}
	for _, e := range edges {
		adj[e.FromID] = append(adj[e.FromID], e.ToID)
	}
	return adj
}

// findPath runs a breadth-first search from fromID to toID over adj,
// returning the node ID path (inclusive of both ends) if one exists.
func findPath(adj map[string][]string, fromID, toID string) ([]string, bool) {
	if fromID == toID {
		return []string{fromID}, true
	}
	type frame struct {
		id   string
		path []string
	}
	visited := map[string]bool{fromID: true}
	queue := []frame{{id: fromID, path: []string{fromID}}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur.id] {
			if visited[next] {
				continue
			}
			visited[next] = true
			path := append(append([]string{}, cur.path...), next)
			if next == toID {
				return path, true
			}
			queue = append(queue, frame{id: next, path: path})
		}
	}
	return nil, false
}

// Analyze returns the taint findings for fn under mode. mode is assumed
// already normalized via ir.NormalizeTaintMode.
func (t *TaintAnalyzer) Analyze(idx *docIndex, fn *ir.Node, mode ir.TaintMode, pdgNodes []ir.PDGNode, pdgEdges []ir.PDGEdge) []ir.TaintFinding {
	switch mode {
	case ir.ModeFieldSensitive:
		return t.analyzeFieldSensitive(idx, fn, pdgEdges)
	default:
		return t.analyzeExpressionLevel(idx, fn, mode, pdgEdges)
	}
}

// analyzeExpressionLevel handles basic and path-sensitive modes: both
// reduce to PDG reachability from a source expression to a sink
// expression, path-sensitive additionally suppressing findings the
// dominator-based guard detector proves are protected on every path.
// Sources are scoped to fn (the function a finding is attributed to);
// sinks may live in any function, since the merged edge set includes
// the arg->param and return->callsite Data edges that carry a value
// across call boundaries.
func (t *TaintAnalyzer) analyzeExpressionLevel(idx *docIndex, fn *ir.Node, mode ir.TaintMode, pdgEdges []ir.PDGEdge) []ir.TaintFinding {
	var sources []*ir.Expression
	for i := range idx.doc.Expressions {
		e := &idx.doc.Expressions[i]
		if e.FunctionNodeID == fn.ID && isTaintSource(e) {
			sources = append(sources, e)
		}
	}
	if len(sources) == 0 {
		return nil
	}
	var sinks []*ir.Expression
	for i := range idx.doc.Expressions {
		e := &idx.doc.Expressions[i]
		if isTaintSink(e) {
			sinks = append(sinks, e)
		}
	}
	if len(sinks) == 0 {
		return nil
	}

	adj := pdgAdjacency(pdgEdges)

	// Guards are evaluated against the sink's own function: its detector
	// pass and dominator tree, resolved lazily per function touched.
	guardsByFn := map[string][]Guard{}
	guardsFor := func(fnID string) []Guard {
		if g, ok := guardsByFn[fnID]; ok {
			return g
		}
		var g []Guard
		if node, ok := idx.doc.NodeByID(fnID); ok {
			g = t.guards.Detect(idx, node)
		}
		guardsByFn[fnID] = g
		return g
	}

	var findings []ir.TaintFinding
	seen := map[[2]string]bool{}
	for _, src := range sources {
		for _, sink := range sinks {
			if src.ID == sink.ID {
				continue
			}
			key := [2]string{src.ID, sink.ID}
			if seen[key] {
				continue
			}
			path, ok := findPath(adj, exprPDGNodeID(src.ID), exprPDGNodeID(sink.ID))
			if !ok {
				continue
			}
			seen[key] = true

			sanitized, sanitizerID := t.pathSanitized(idx, path)
			if mode == ir.ModePathSensitive && !sanitized {
				if sinkBlockID, ok := idx.blockIDOf(sink.ID); ok {
					guards := guardsFor(sink.FunctionNodeID)
					tree := idx.domTreeByFn[sink.FunctionNodeID]
					if t.guards.IsGuardProtected(guards, tree, sinkBlockID, nameOf(src)) {
						sanitized = true
					}
				}
			}

			findings = append(findings, ir.TaintFinding{
				ID:             ir.PDGEdgeID(ir.PDGEdgeData, src.ID, sink.ID),
				Mode:           mode,
				SourceExprID:   src.ID,
				SinkExprID:     sink.ID,
				FunctionNodeID: fn.ID,
				PathPDGNodeIDs: path,
				Severity:       severityFor(sanitized),
				Sanitized:      sanitized,
				SanitizerExprID: sanitizerID,
			})
		}
	}
	return findings
}

// analyzeFieldSensitive tracks tainted (variable, field) pairs: a source
// is an Attribute expression (obj.field) whose base identifier or field
// name heuristically classifies as a source, a sink is any sink
// expression in fn reachable from it in the PDG. The sink's field name
// is not compared with the source's.
func (t *TaintAnalyzer) analyzeFieldSensitive(idx *docIndex, fn *ir.Node, pdgEdges []ir.PDGEdge) []ir.TaintFinding {
	adj := pdgAdjacency(pdgEdges)

	type fieldSource struct {
		expr  *ir.Expression
		field string
	}
	var sources []fieldSource
	var sinkCandidates []*ir.Expression
	for i := range idx.doc.Expressions {
		e := &idx.doc.Expressions[i]
		if e.FunctionNodeID != fn.ID {
			continue
		}
		if e.Kind == ir.ExprKindAttribute {
			field := attributeFieldName(e.Text)
			if isTaintSource(e) || containsAny(field, heuristicSourceSubstrings) {
				sources = append(sources, fieldSource{expr: e, field: field})
			}
		}
		if isTaintSink(e) {
			sinkCandidates = append(sinkCandidates, e)
		}
	}
	if len(sources) == 0 || len(sinkCandidates) == 0 {
		return nil
	}

	var findings []ir.TaintFinding
	seen := map[[2]string]bool{}
	for _, src := range sources {
		for _, sink := range sinkCandidates {
			if src.expr.ID == sink.ID {
				continue
			}
			key := [2]string{src.expr.ID, sink.ID}
			if seen[key] {
				continue
			}
			path, ok := findPath(adj, exprPDGNodeID(src.expr.ID), exprPDGNodeID(sink.ID))
			if !ok {
				continue
			}
			seen[key] = true
			sanitized, sanitizerID := t.pathSanitized(idx, path)
			findings = append(findings, ir.TaintFinding{
				ID:              ir.PDGEdgeID(ir.PDGEdgeData, src.expr.ID, sink.ID),
				Mode:            ir.ModeFieldSensitive,
				SourceExprID:    src.expr.ID,
				SinkExprID:      sink.ID,
				FunctionNodeID:  fn.ID,
				PathPDGNodeIDs:  path,
				Severity:        severityFor(sanitized),
				Sanitized:       sanitized,
				SanitizerExprID: sanitizerID,
			})
		}
	}
	return findings
}

// attributeFieldName extracts the trailing field segment of a dotted
// attribute expression's verbatim text (e.g. "user.session_token" -> "session_token").
func attributeFieldName(text string) string {
	if idx := strings.LastIndex(text, "."); idx >= 0 && idx+1 < len(text) {
		return text[idx+1:]
	}
	return text
}

// pathSanitized reports whether any expression-level PDG node along path
// is itself tagged as a sanitizer, and which expression if so.
func (t *TaintAnalyzer) pathSanitized(idx *docIndex, path []string) (bool, string) {
	const exprPrefix = "pdg:expr:"
	for _, nodeID := range path {
		if !strings.HasPrefix(nodeID, exprPrefix) {
			continue
		}
		exprID := strings.TrimPrefix(nodeID, exprPrefix)
		if e, ok := idx.exprByID[exprID]; ok && isSanitizer(e) {
			return true, exprID
		}
	}
	return false, ""
}

func severityFor(sanitized bool) ir.TaintFindingSeverity {
	if sanitized {
		return ir.SeverityLow
	}
	return ir.SeverityHigh
}
