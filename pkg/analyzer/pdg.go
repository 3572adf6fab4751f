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

import "github.com/kraklabs/cie/pkg/ir"

// PDGBuilder constructs the program dependence graph for one function at
// a time: one PDG node anchors the function itself (the target of
// inter-procedural Control edges), one PDG node per expression that
// participates in its data-flow graph, Data edges following the SSA
// def-use chains pkg/semantic already computed, and Control edges
// following Calls edges out of the function. After every function's
// build, LinkInterprocedural converts the document's arg->param and
// return->callsite edges into cross-function Data edges over the same
// node space.
//
// Data dependence is derived from the DFG layer's SSA def-use chains
// rather than Reads/Writes structural edges, which the generators do
// not emit; the def-use chains encode the same relationship with more
// precision than declaration-level edges would.
type PDGBuilder struct{}

// NewPDGBuilder constructs a stateless PDGBuilder.
func NewPDGBuilder() *PDGBuilder { return &PDGBuilder{} }

func fnPDGNodeID(fnID string) string     { return "pdg:fn:" + fnID }
func exprPDGNodeID(exprID string) string { return "pdg:expr:" + exprID }

// Build returns the PDG nodes and edges for fn given the whole document
// (callees may live in other functions already indexed).
func (b *PDGBuilder) Build(idx *docIndex, fn *ir.Node) ([]ir.PDGNode, []ir.PDGEdge) {
	var nodes []ir.PDGNode
	var edges []ir.PDGEdge

	nodes = append(nodes, ir.PDGNode{ID: fnPDGNodeID(fn.ID), FunctionNodeID: fn.ID})

	seenExprNode := map[string]bool{}
	ensureExprNode := func(exprID string) {
		if seenExprNode[exprID] {
			return
		}
		seenExprNode[exprID] = true
		nodes = append(nodes, ir.PDGNode{
			ID:             exprPDGNodeID(exprID),
			FunctionNodeID: fn.ID,
			CFGBlockID:     idx.blockOfExpr[exprID],
			ExpressionID:   exprID,
		})
	}

	ctx, ok := idx.ssaByFn[fn.ID]
	if ok {
		for _, v := range ctx.Versions {
			defEdge, hasDef := idx.defEdgeBySSA[v.ID]
			if !hasDef {
				continue
			}
			ensureExprNode(defEdge.ExpressionID)
			for _, useEdge := range idx.useEdgesBySSA[v.ID] {
				ensureExprNode(useEdge.ExpressionID)
				fromID := exprPDGNodeID(defEdge.ExpressionID)
				toID := exprPDGNodeID(useEdge.ExpressionID)
				edges = append(edges, ir.PDGEdge{
					ID:     ir.PDGEdgeID(ir.PDGEdgeData, fromID, toID),
					Kind:   ir.PDGEdgeData,
					FromID: fromID,
					ToID:   toID,
				})
			}
		}
	}

	for i := range idx.doc.Edges {
		e := &idx.doc.Edges[i]
		if e.Kind != ir.EdgeKindCalls || e.SourceID != fn.ID || e.IsExternal() {
			continue
		}
		callee, ok := idx.doc.NodeByID(e.TargetID)
		if !ok {
			continue
		}
		fromID := fnPDGNodeID(fn.ID)
		toID := fnPDGNodeID(callee.ID)
		edges = append(edges, ir.PDGEdge{
			ID:     ir.PDGEdgeID(ir.PDGEdgeControl, fromID, toID),
			Kind:   ir.PDGEdgeControl,
			FromID: fromID,
			ToID:   toID,
		})
	}

	return nodes, edges
}

// LinkInterprocedural converts the document's InterproceduralEdge
// entries into expression-level Data PDG edges so taint propagation and
// slicing can follow a value across a call boundary rather than only
// the coarse function-level Control edge: the caller-side definition
// feeding an argument gains an edge to every use of the matching callee
// parameter, and each callee return expression gains an edge back to
// the call expression. Run once over the whole document after the
// per-function Build calls; existing holds the PDG node IDs those calls
// already created, and any endpoint still missing (a parameter's
// implicit version 0 has no defining expression, so its uses may be
// absent from the callee's own build) is appended here with its real
// owning function.
func (b *PDGBuilder) LinkInterprocedural(idx *docIndex, existing map[string]bool) ([]ir.PDGNode, []ir.PDGEdge) {
	var nodes []ir.PDGNode
	var edges []ir.PDGEdge
	seenEdge := map[string]bool{}

	ensure := func(exprID string) string {
		id := exprPDGNodeID(exprID)
		if existing[id] {
			return id
		}
		existing[id] = true
		node := ir.PDGNode{ID: id, ExpressionID: exprID}
		if expr, ok := idx.exprByID[exprID]; ok {
			node.FunctionNodeID = expr.FunctionNodeID
			node.CFGBlockID = idx.blockOfExpr[exprID]
		}
		nodes = append(nodes, node)
		return id
	}
	addEdge := func(fromExprID, toExprID string) {
		if fromExprID == toExprID {
			return
		}
		fromID := ensure(fromExprID)
		toID := ensure(toExprID)
		id := ir.PDGEdgeID(ir.PDGEdgeData, fromID, toID)
		if seenEdge[id] {
			return
		}
		seenEdge[id] = true
		edges = append(edges, ir.PDGEdge{ID: id, Kind: ir.PDGEdgeData, FromID: fromID, ToID: toID})
	}

	for i := range idx.doc.Interprocedural {
		ie := &idx.doc.Interprocedural[i]
		switch {
		case ie.CalleeReturnExprID != "":
			if idx.exprByID[ie.CalleeReturnExprID] == nil || idx.exprByID[ie.CallExpressionID] == nil {
				continue
			}
			addEdge(ie.CalleeReturnExprID, ie.CallExpressionID)
		case ie.CalleeSSAVersionID != "":
			// The argument's reaching definition feeds the parameter; the
			// call expression stands in when that definition is implicit
			// (e.g. the argument is itself a parameter of the caller).
			fromExprID := ie.CallExpressionID
			if defEdge, ok := idx.defEdgeBySSA[ie.CallerSSAVersionID]; ok {
				fromExprID = defEdge.ExpressionID
			}
			if idx.exprByID[fromExprID] == nil {
				continue
			}
			for _, use := range idx.useEdgesBySSA[ie.CalleeSSAVersionID] {
				if idx.exprByID[use.ExpressionID] == nil {
					continue
				}
				addEdge(fromExprID, use.ExpressionID)
			}
		}
	}
	return nodes, edges
}
