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

package semantic

import "github.com/kraklabs/cie/pkg/ir"

// CalleeParamReturn is a sentinel CalleeParamIndex marking a
// return-value edge rather than an argument-to-parameter edge.
const CalleeParamReturn = -1

// InterproceduralLinker synthesizes arg->param and return->callsite
// InterproceduralEdge entries once a Calls edge resolves a call
// expression's target function, bridging the per-function SSA contexts
// CFGBuilder/SSABuilder already produced in isolation.
type InterproceduralLinker struct{}

// NewInterproceduralLinker constructs a stateless linker.
func NewInterproceduralLinker() *InterproceduralLinker { return &InterproceduralLinker{} }

// funcCtx bundles everything the linker needs about one already-built
// function for cross-function wiring.
type FuncCtx struct {
	Node        *ir.Node
	Expressions []ir.Expression
	SSA         ir.SSAContext
	Signature   *ir.SignatureEntity
}

// Link walks every resolved Calls edge between functions present in
// funcs and, for each matching Call expression in the caller, emits one
// InterproceduralEdge per argument position plus one return edge back to
// the call site if the callee has return statements.
func (l *InterproceduralLinker) Link(funcs map[string]*FuncCtx, callEdges []ir.Edge) []ir.InterproceduralEdge {
	var out []ir.InterproceduralEdge

	for _, edge := range callEdges {
		if edge.Kind != ir.EdgeKindCalls || edge.IsExternal() {
			continue
		}
		caller, ok := funcs[edge.SourceID]
		if !ok || edge.Span == nil {
			continue
		}
		callee, ok := funcs[edge.TargetID]
		if !ok {
			continue
		}

		callExpr := findCallExprAtSpan(caller.Expressions, *edge.Span)
		if callExpr == nil {
			continue
		}

		out = append(out, l.linkArguments(caller, callee, callExpr)...)
		out = append(out, l.linkReturns(callee, callExpr)...)
	}

	return out
}

func (l *InterproceduralLinker) linkArguments(caller, callee *FuncCtx, callExpr *ir.Expression) []ir.InterproceduralEdge {
	if callee.Signature == nil {
		return nil
	}
	exprByID := indexExpressions(caller.Expressions)

	var edges []ir.InterproceduralEdge
	for argIdx, argID := range callExpr.ChildIDs {
		if argIdx >= len(callee.Signature.Params) {
			break
		}
		argExpr, ok := exprByID[argID]
		if !ok {
			continue
		}
		ssaID := latestSSAVersionFor(caller.SSA, argExpr)
		if ssaID == "" {
			continue
		}
		id := ir.EdgeID(ir.EdgeKindFlowsTo, ssaID, callee.Node.ID, argIdx)
		edges = append(edges, ir.InterproceduralEdge{
			ID:                 "iedge:" + id,
			CallExpressionID:   callExpr.ID,
			CallerSSAVersionID: ssaID,
			CalleeFunctionID:   callee.Node.ID,
			CalleeParamIndex:   argIdx,
			CalleeSSAVersionID: paramVersionID(callee, argIdx),
		})
	}
	return edges
}

func (l *InterproceduralLinker) linkReturns(callee *FuncCtx, callExpr *ir.Expression) []ir.InterproceduralEdge {
	var edges []ir.InterproceduralEdge
	for _, expr := range callee.Expressions {
		if expr.Kind != ir.ExprKindReturn {
			continue
		}
		id := ir.EdgeID(ir.EdgeKindFlowsTo, expr.ID, callExpr.ID, 0)
		edges = append(edges, ir.InterproceduralEdge{
			ID:                 "iedge:" + id,
			CallExpressionID:   callExpr.ID,
			CalleeFunctionID:   callee.Node.ID,
			CalleeParamIndex:   CalleeParamReturn,
			CalleeReturnExprID: expr.ID,
		})
	}
	return edges
}

// paramVersionID resolves the callee parameter's implicit version-0 SSA
// version, the receiving end of an arg->param edge. Empty when the
// callee's SSA context never saw the parameter name.
func paramVersionID(callee *FuncCtx, paramIdx int) string {
	if callee.Signature == nil || paramIdx >= len(callee.Signature.Params) {
		return ""
	}
	name := callee.Signature.Params[paramIdx].Name
	for _, v := range callee.SSA.Versions {
		if v.VariableName == name && v.Version == 0 {
			return v.ID
		}
	}
	return ""
}

func findCallExprAtSpan(exprs []ir.Expression, span ir.Span) *ir.Expression {
	for i := range exprs {
		e := &exprs[i]
		if e.Kind == ir.ExprKindCall && e.Span == span {
			return e
		}
	}
	return nil
}

func indexExpressions(exprs []ir.Expression) map[string]*ir.Expression {
	m := make(map[string]*ir.Expression, len(exprs))
	for i := range exprs {
		m[exprs[i].ID] = &exprs[i]
	}
	return m
}

// latestSSAVersionFor approximates the reaching definition of an
// argument expression: for an identifier argument it returns the
// highest-numbered SSA version recorded for that variable name (the
// linker does not re-walk block order at the call site); any other
// expression shape has no SSA version of its own and returns "".
func latestSSAVersionFor(ctx ir.SSAContext, argExpr *ir.Expression) string {
	if argExpr.Kind != ir.ExprKindIdentifier {
		return ""
	}
	best := ""
	bestVersion := -1
	for _, v := range ctx.Versions {
		if v.VariableName != argExpr.Text {
			continue
		}
		if v.Version > bestVersion {
			bestVersion = v.Version
			best = v.ID
		}
	}
	return best
}
