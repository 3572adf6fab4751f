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

package query

import (
	"testing"

	"github.com/kraklabs/cie/pkg/ir"
)

func newTestDoc() *ir.IRDocument {
	doc := ir.NewIRDocument("2.3", "repo1", "snap1")
	doc.Nodes = []ir.Node{
		{ID: "func:a", Kind: ir.NodeKindFunction, Name: "a", FilePath: "a.go", Span: ir.Span{StartLine: 1, EndLine: 2}},
		{ID: "func:b", Kind: ir.NodeKindFunction, Name: "b", FilePath: "b.go", Span: ir.Span{StartLine: 1, EndLine: 2}},
		{ID: "class:c", Kind: ir.NodeKindClass, Name: "c", FilePath: "a.go", Span: ir.Span{StartLine: 4, EndLine: 10}},
	}
	doc.Edges = []ir.Edge{
		{ID: "e1", Kind: ir.EdgeKindCalls, SourceID: "func:a", TargetID: "func:b"},
		{ID: "e2", Kind: ir.EdgeKindBinds, SourceID: "func:a", TargetID: "slot:a.html:3:1"},
	}
	doc.Expressions = []ir.Expression{
		{ID: "expr:1", Kind: ir.ExprKindCall, FunctionNodeID: "func:a", CalleeName: "b"},
	}
	doc.CFGBlocks = []ir.CFGBlock{
		{ID: "cfg:1", Kind: ir.CFGBlockLoopHead, FunctionNodeID: "func:a"},
	}
	doc.TemplateSlots = []ir.TemplateSlot{
		{ID: "slot:a.html:3:1", ExpressionID: "expr:1", Kind: ir.TemplateSlotInterpolation, RawText: "{{ x }}"},
	}
	doc.Occurrences = []ir.Occurrence{
		{ID: "occ:1", Descriptor: ir.Descriptor("go pkg 1.0.0 a#"), FilePath: "a.go", Role: ir.SymbolRoleDefinition},
	}
	return doc
}

func TestIndexes_NodeByID(t *testing.T) {
	idx := NewIndexes(newTestDoc())
	n, ok := idx.NodeByID("func:a")
	if !ok || n.Name != "a" {
		t.Fatalf("expected func:a to resolve, got %v ok=%v", n, ok)
	}
	if _, ok := idx.NodeByID("missing"); ok {
		t.Fatal("expected missing id to not resolve")
	}
}

func TestIndexes_EdgesBySourceAndTarget(t *testing.T) {
	idx := NewIndexes(newTestDoc())
	if len(idx.EdgesBySource("func:a")) != 2 {
		t.Fatalf("expected 2 outgoing edges from func:a, got %d", len(idx.EdgesBySource("func:a")))
	}
	if len(idx.EdgesByTarget("func:b")) != 1 {
		t.Fatalf("expected 1 incoming edge to func:b, got %d", len(idx.EdgesByTarget("func:b")))
	}
}

func TestIndexes_NodesByKindAndFileNodes(t *testing.T) {
	idx := NewIndexes(newTestDoc())
	if len(idx.NodesByKind(ir.NodeKindFunction)) != 2 {
		t.Fatalf("expected 2 function nodes, got %d", len(idx.NodesByKind(ir.NodeKindFunction)))
	}
	if len(idx.FileNodes("a.go")) != 2 {
		t.Fatalf("expected 2 nodes in a.go, got %d", len(idx.FileNodes("a.go")))
	}
}

func TestIndexes_CFGBlocksByKindAndExpressionsByKind(t *testing.T) {
	idx := NewIndexes(newTestDoc())
	if len(idx.CFGBlocksByKind(ir.CFGBlockLoopHead)) != 1 {
		t.Fatal("expected 1 loop header block")
	}
	if len(idx.ExpressionsByKind(ir.ExprKindCall)) != 1 {
		t.Fatal("expected 1 call expression")
	}
	if _, ok := idx.ExprByID("expr:1"); !ok {
		t.Fatal("expected expr:1 to resolve")
	}
}

func TestIndexes_SlotIndexes(t *testing.T) {
	idx := NewIndexes(newTestDoc())
	if len(idx.SlotsByContext(ir.TemplateSlotInterpolation)) != 1 {
		t.Fatal("expected 1 interpolation slot")
	}
	if _, ok := idx.SlotByID("slot:a.html:3:1"); !ok {
		t.Fatal("expected slot to resolve by id")
	}
	if len(idx.SlotsByFile("a.go")) != 1 {
		t.Fatal("expected 1 slot resolved via its owning expression's function file path")
	}
}

func TestIndexes_BindingsBySlotAndSource(t *testing.T) {
	idx := NewIndexes(newTestDoc())
	if len(idx.BindingsBySlot("slot:a.html:3:1")) != 1 {
		t.Fatal("expected 1 binding targeting the slot")
	}
	if len(idx.BindingsBySource("func:a")) != 1 {
		t.Fatal("expected 1 binding sourced from func:a")
	}
}

func TestIndexes_OccurrenceIndexes(t *testing.T) {
	idx := NewIndexes(newTestDoc())
	if len(idx.OccurrencesByFile("a.go")) != 1 {
		t.Fatal("expected 1 occurrence in a.go")
	}
	if len(idx.OccurrencesByRole(ir.SymbolRoleDefinition)) != 1 {
		t.Fatal("expected 1 definition occurrence")
	}
	if len(idx.OccurrencesBySymbol(ir.Descriptor("go pkg 1.0.0 a#"))) != 1 {
		t.Fatal("expected 1 occurrence for the descriptor")
	}
}

func TestIndexes_IdempotentAcrossRepeatedCalls(t *testing.T) {
	idx := NewIndexes(newTestDoc())
	first := idx.NodesByKind(ir.NodeKindFunction)
	second := idx.NodesByKind(ir.NodeKindFunction)
	if len(first) != len(second) {
		t.Fatal("expected repeated calls to return the same index contents")
	}
}
