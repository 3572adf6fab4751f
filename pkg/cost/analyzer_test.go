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
	"testing"

	"github.com/kraklabs/cie/pkg/ir"
)

func newFunc(doc *ir.IRDocument, name string) *ir.Node {
	n := ir.Node{
		ID:       ir.NodeID(doc.RepoID, ir.NodeKindFunction, "f.py", name, "python"),
		Kind:     ir.NodeKindFunction,
		Name:     name,
		FilePath: "f.py",
	}
	doc.Nodes = append(doc.Nodes, n)
	return &doc.Nodes[len(doc.Nodes)-1]
}

func newExpr(doc *ir.IRDocument, fnID string, kind ir.ExpressionKind, text string, line int) *ir.Expression {
	e := ir.Expression{
		ID:             ir.ExpressionID(fnID, kind, ir.Span{StartLine: line, EndLine: line}),
		Kind:           kind,
		FunctionNodeID: fnID,
		Text:           text,
		Span:           ir.Span{StartLine: line, EndLine: line},
	}
	doc.Expressions = append(doc.Expressions, e)
	return &doc.Expressions[len(doc.Expressions)-1]
}

func newLoopBlock(doc *ir.IRDocument, fnID string, condID string, start, end int) *ir.CFGBlock {
	b := ir.CFGBlock{
		ID:               ir.CFGBlockID(fnID, ir.CFGBlockLoopHead, start),
		Kind:             ir.CFGBlockLoopHead,
		FunctionNodeID:   fnID,
		Span:             &ir.Span{StartLine: start, EndLine: end},
		StatementExprIDs: []string{condID},
	}
	doc.CFGBlocks = append(doc.CFGBlocks, b)
	return &doc.CFGBlocks[len(doc.CFGBlocks)-1]
}

func TestAnalyzeFunction_LiteralBoundIsConstantProven(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "snap1")
	fn := newFunc(doc, "handle")
	lit := newExpr(doc, fn.ID, ir.ExprKindLiteral, "10", 2)
	newLoopBlock(doc, fn.ID, lit.ID, 2, 4)

	verdict, err := NewAnalyzer().AnalyzeFunction(doc, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Complexity != ComplexityConstant || verdict.Basis != BasisProven {
		t.Fatalf("expected constant/proven, got %s/%s", verdict.Complexity, verdict.Basis)
	}
}

func TestAnalyzeFunction_IdentifierBoundIsLinearProven(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "snap1")
	fn := newFunc(doc, "handle")
	name := newExpr(doc, fn.ID, ir.ExprKindIdentifier, "n", 2)
	newLoopBlock(doc, fn.ID, name.ID, 2, 4)

	verdict, err := NewAnalyzer().AnalyzeFunction(doc, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Complexity != ComplexityLinear || verdict.Basis != BasisProven {
		t.Fatalf("expected linear/proven, got %s/%s", verdict.Complexity, verdict.Basis)
	}
	if len(verdict.Loops) != 1 || verdict.Loops[0].Bound != "n" {
		t.Fatalf("expected bound n, got %+v", verdict.Loops)
	}
}

func TestAnalyzeFunction_RangeLenRecursesIntoArgument(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "snap1")
	fn := newFunc(doc, "handle")
	items := newExpr(doc, fn.ID, ir.ExprKindIdentifier, "items", 2)
	lenCall := newExpr(doc, fn.ID, ir.ExprKindCall, "len(items)", 2)
	lenCall.Span = ir.Span{StartLine: 2, EndLine: 2, StartCol: 6, EndCol: 16}
	lenCall.ID = ir.ExpressionID(fn.ID, ir.ExprKindCall, lenCall.Span)
	lenCall.CalleeName = "len"
	lenCall.ChildIDs = []string{items.ID}
	rangeCall := newExpr(doc, fn.ID, ir.ExprKindCall, "range(len(items))", 2)
	rangeCall.CalleeName = "range"
	rangeCall.ChildIDs = []string{lenCall.ID}
	newLoopBlock(doc, fn.ID, rangeCall.ID, 2, 4)

	verdict, err := NewAnalyzer().AnalyzeFunction(doc, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(verdict.Loops) != 1 || verdict.Loops[0].Bound != "len(items)" {
		t.Fatalf("expected bound len(items), got %+v", verdict.Loops)
	}
}

func TestAnalyzeFunction_UnresolvedBoundIsHeuristic(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "snap1")
	fn := newFunc(doc, "handle")
	cond := newExpr(doc, fn.ID, ir.ExprKindAwait, "await something()", 2)
	newLoopBlock(doc, fn.ID, cond.ID, 2, 4)

	verdict, err := NewAnalyzer().AnalyzeFunction(doc, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Loops[0].Bound != "?" || verdict.Basis != BasisHeuristic {
		t.Fatalf("expected unresolved heuristic bound, got %+v", verdict.Loops[0])
	}
}

func TestAnalyzeFunction_NestedLoopsClassifyPolynomial(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "snap1")
	fn := newFunc(doc, "handle")
	outerCond := newExpr(doc, fn.ID, ir.ExprKindIdentifier, "n", 2)
	innerCond := newExpr(doc, fn.ID, ir.ExprKindIdentifier, "m", 3)
	newLoopBlock(doc, fn.ID, outerCond.ID, 2, 6)
	newLoopBlock(doc, fn.ID, innerCond.ID, 3, 5)

	verdict, err := NewAnalyzer().AnalyzeFunction(doc, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Complexity != ComplexityPolynomial {
		t.Fatalf("expected polynomial worst case, got %s", verdict.Complexity)
	}
	if len(verdict.Hotspots) != 1 {
		t.Fatalf("expected exactly one outermost hotspot, got %+v", verdict.Hotspots)
	}
}

func TestAnalyzeFunction_CachesPerSnapshotAndFunction(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "snap1")
	fn := newFunc(doc, "handle")
	lit := newExpr(doc, fn.ID, ir.ExprKindLiteral, "10", 2)
	newLoopBlock(doc, fn.ID, lit.ID, 2, 4)

	a := NewAnalyzer()
	first, err := a.AnalyzeFunction(doc, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc.CFGBlocks = nil // mutate the document; a cache hit must still return the first verdict
	second, err := a.AnalyzeFunction(doc, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected the cached verdict pointer to be reused")
	}

	other := NewAnalyzer()
	doc.CFGBlocks = append(doc.CFGBlocks, ir.CFGBlock{})
	third, err := other.AnalyzeFunction(doc, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third == first {
		t.Fatalf("expected a fresh Analyzer instance not to share cache entries")
	}
}

func TestAnalyzeFunction_HalvingBoundIsLogarithmic(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "snap1")
	fn := newFunc(doc, "handle")
	binop := newExpr(doc, fn.ID, ir.ExprKindBinaryOp, "n / 2", 2)
	newLoopBlock(doc, fn.ID, binop.ID, 2, 4)

	verdict, err := NewAnalyzer().AnalyzeFunction(doc, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Complexity != ComplexityLogarithmic {
		t.Fatalf("expected logarithmic, got %s", verdict.Complexity)
	}
}
