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
	"testing"

	"github.com/kraklabs/cie/pkg/ir"
)

func newTestFunction(doc *ir.IRDocument, name string) *ir.Node {
	n := ir.Node{
		ID:       ir.NodeID(doc.RepoID, ir.NodeKindFunction, "f.py", name, "python"),
		Kind:     ir.NodeKindFunction,
		Name:     name,
		FilePath: "f.py",
		Language: "python",
	}
	doc.Nodes = append(doc.Nodes, n)
	return &doc.Nodes[len(doc.Nodes)-1]
}

func newTestExpr(doc *ir.IRDocument, fnID string, kind ir.ExpressionKind, text string, line int) *ir.Expression {
	e := ir.Expression{
		ID:             ir.ExpressionID(fnID, kind, ir.Span{StartLine: line, EndLine: line}),
		Kind:           kind,
		FunctionNodeID: fnID,
		Text:           text,
		Span:           ir.Span{StartLine: line, EndLine: line},
		Attrs:          ir.Attrs{},
	}
	doc.Expressions = append(doc.Expressions, e)
	return &doc.Expressions[len(doc.Expressions)-1]
}

func TestPDGBuilder_DataEdgeFollowsDFGDefUse(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "s")
	fn := newTestFunction(doc, "handle")

	defExpr := newTestExpr(doc, fn.ID, ir.ExprKindAssign, "x = source()", 1)
	useExpr := newTestExpr(doc, fn.ID, ir.ExprKindIdentifier, "x", 2)

	version := ir.SSAVersionID(fn.ID, "x", 1)
	doc.DFG.Contexts = append(doc.DFG.Contexts, ir.SSAContext{
		FunctionNodeID: fn.ID,
		Versions:       []ir.SSAVersion{{ID: version, FunctionNodeID: fn.ID, VariableName: "x", Version: 1, DefExprID: defExpr.ID}},
	})
	doc.DFG.Edges = append(doc.DFG.Edges,
		ir.DFGEdge{ID: ir.DFGEdgeID(ir.DFGEdgeDef, version, defExpr.ID), Kind: ir.DFGEdgeDef, SSAVersionID: version, ExpressionID: defExpr.ID},
		ir.DFGEdge{ID: ir.DFGEdgeID(ir.DFGEdgeUse, version, useExpr.ID), Kind: ir.DFGEdgeUse, SSAVersionID: version, ExpressionID: useExpr.ID},
	)

	idx := newDocIndex(doc)
	nodes, edges := NewPDGBuilder().Build(idx, fn)

	if len(nodes) != 3 { // function node + def expr node + use expr node
		t.Fatalf("expected 3 PDG nodes, got %d", len(nodes))
	}
	var dataEdges int
	for _, e := range edges {
		if e.Kind == ir.PDGEdgeData && e.FromID == exprPDGNodeID(defExpr.ID) && e.ToID == exprPDGNodeID(useExpr.ID) {
			dataEdges++
		}
	}
	if dataEdges != 1 {
		t.Fatalf("expected 1 data edge from def to use, got %d (all edges: %+v)", dataEdges, edges)
	}
}

func TestPDGBuilder_ControlEdgeFollowsCallsEdge(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "s")
	caller := newTestFunction(doc, "caller")
	callee := newTestFunction(doc, "callee")
	doc.Edges = append(doc.Edges, ir.Edge{
		ID:       ir.EdgeID(ir.EdgeKindCalls, caller.ID, callee.ID, 0),
		Kind:     ir.EdgeKindCalls,
		SourceID: caller.ID,
		TargetID: callee.ID,
	})

	idx := newDocIndex(doc)
	_, edges := NewPDGBuilder().Build(idx, caller)

	found := false
	for _, e := range edges {
		if e.Kind == ir.PDGEdgeControl && e.FromID == fnPDGNodeID(caller.ID) && e.ToID == fnPDGNodeID(callee.ID) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a control edge from caller to callee, got %+v", edges)
	}
}

func TestPDGBuilder_SkipsExternalCallEdges(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "s")
	caller := newTestFunction(doc, "caller")
	doc.Edges = append(doc.Edges, ir.Edge{
		ID:               ir.EdgeID(ir.EdgeKindCalls, caller.ID, "", 0),
		Kind:             ir.EdgeKindCalls,
		SourceID:         caller.ID,
		UnresolvedTarget: "os.system",
	})

	idx := newDocIndex(doc)
	_, edges := NewPDGBuilder().Build(idx, caller)
	if len(edges) != 0 {
		t.Fatalf("expected no control edges for an external call, got %+v", edges)
	}
}

// interprocDoc builds a two-function document where the caller assigns
// a tainted value, passes it to the callee, and the callee feeds its
// parameter into a sink and returns it.
func interprocDoc() (*ir.IRDocument, *ir.Node, *ir.Node, *ir.Expression, *ir.Expression, *ir.Expression, *ir.Expression) {
	doc := ir.NewIRDocument("2.3", "r", "s")
	caller := newTestFunction(doc, "handler")
	callee := newTestFunction(doc, "helper")

	assignExpr := newTestExpr(doc, caller.ID, ir.ExprKindAssign, "q = request.args['q']", 2)
	callExpr := newTestExpr(doc, caller.ID, ir.ExprKindCall, "helper(q)", 3)
	callExpr.CalleeName = "helper"
	sinkExpr := newTestExpr(doc, callee.ID, ir.ExprKindCall, "cursor.execute(p)", 11)
	sinkExpr.CalleeName = "cursor.execute"
	returnExpr := newTestExpr(doc, callee.ID, ir.ExprKindReturn, "return p", 12)

	qVersion := ir.SSAVersionID(caller.ID, "q", 1)
	pVersion := ir.SSAVersionID(callee.ID, "p", 0)
	doc.DFG.Contexts = append(doc.DFG.Contexts,
		ir.SSAContext{FunctionNodeID: caller.ID, Versions: []ir.SSAVersion{
			{ID: qVersion, FunctionNodeID: caller.ID, VariableName: "q", Version: 1, DefExprID: assignExpr.ID},
		}},
		ir.SSAContext{FunctionNodeID: callee.ID, Versions: []ir.SSAVersion{
			{ID: pVersion, FunctionNodeID: callee.ID, VariableName: "p", Version: 0},
		}},
	)
	doc.DFG.Edges = append(doc.DFG.Edges,
		ir.DFGEdge{ID: ir.DFGEdgeID(ir.DFGEdgeDef, qVersion, assignExpr.ID), Kind: ir.DFGEdgeDef, SSAVersionID: qVersion, ExpressionID: assignExpr.ID},
		ir.DFGEdge{ID: ir.DFGEdgeID(ir.DFGEdgeUse, qVersion, callExpr.ID), Kind: ir.DFGEdgeUse, SSAVersionID: qVersion, ExpressionID: callExpr.ID},
		ir.DFGEdge{ID: ir.DFGEdgeID(ir.DFGEdgeUse, pVersion, sinkExpr.ID), Kind: ir.DFGEdgeUse, SSAVersionID: pVersion, ExpressionID: sinkExpr.ID},
		ir.DFGEdge{ID: ir.DFGEdgeID(ir.DFGEdgeUse, pVersion, returnExpr.ID), Kind: ir.DFGEdgeUse, SSAVersionID: pVersion, ExpressionID: returnExpr.ID},
	)
	doc.Interprocedural = append(doc.Interprocedural,
		ir.InterproceduralEdge{
			ID:                 "iedge:arg0",
			CallExpressionID:   callExpr.ID,
			CallerSSAVersionID: qVersion,
			CalleeFunctionID:   callee.ID,
			CalleeParamIndex:   0,
			CalleeSSAVersionID: pVersion,
		},
		ir.InterproceduralEdge{
			ID:                 "iedge:ret",
			CallExpressionID:   callExpr.ID,
			CalleeFunctionID:   callee.ID,
			CalleeParamIndex:   -1,
			CalleeReturnExprID: returnExpr.ID,
		},
	)
	return doc, caller, callee, assignExpr, callExpr, sinkExpr, returnExpr
}

func TestPDGBuilder_LinkInterprocedural(t *testing.T) {
	doc, caller, callee, assignExpr, callExpr, sinkExpr, returnExpr := interprocDoc()
	idx := newDocIndex(doc)
	builder := NewPDGBuilder()

	existing := map[string]bool{}
	for _, fn := range []*ir.Node{caller, callee} {
		nodes, _ := builder.Build(idx, fn)
		for _, n := range nodes {
			existing[n.ID] = true
		}
	}

	linkNodes, linkEdges := builder.LinkInterprocedural(idx, existing)

	var sawArg, sawReturn bool
	for _, e := range linkEdges {
		if e.Kind != ir.PDGEdgeData {
			t.Fatalf("interprocedural PDG edges must be Data, got %+v", e)
		}
		if e.FromID == exprPDGNodeID(assignExpr.ID) && e.ToID == exprPDGNodeID(sinkExpr.ID) {
			sawArg = true
		}
		if e.FromID == exprPDGNodeID(returnExpr.ID) && e.ToID == exprPDGNodeID(callExpr.ID) {
			sawReturn = true
		}
	}
	if !sawArg {
		t.Errorf("expected arg->param Data edge from caller assign to callee sink use, got %+v", linkEdges)
	}
	if !sawReturn {
		t.Errorf("expected return->callsite Data edge, got %+v", linkEdges)
	}

	// The callee's parameter uses have no defining expression, so its
	// sink/return nodes only exist once the linker appends them, owned by
	// the callee.
	for _, n := range linkNodes {
		if n.ExpressionID == sinkExpr.ID && n.FunctionNodeID != callee.ID {
			t.Errorf("appended node for %s must belong to the callee, got %+v", sinkExpr.ID, n)
		}
	}
}
