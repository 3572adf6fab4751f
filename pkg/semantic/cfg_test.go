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

import (
	"context"
	"testing"

	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/parser"
)

func TestCFGBuilder_IfElse(t *testing.T) {
	const src = `package sample

func classify(n int) string {
	if n > 0 {
		return "positive"
	} else {
		return "non-positive"
	}
}
`
	front := parser.NewFrontend()
	tree, _, err := front.Parse(context.Background(), parser.LanguageGo, []byte(src), "sample.go")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fn := findFirstOfType(tree.Root, "function_declaration")
	body := fn.ChildByFieldName("body")

	node := &ir.Node{ID: "func:classify", Span: ir.Span{StartLine: 3, EndLine: 9}}
	res := NewCFGBuilder(NewLowerer()).Build(node, body, "go", tree.Content)

	kinds := map[ir.CFGBlockKind]int{}
	for _, b := range res.Blocks {
		kinds[b.Kind]++
	}
	if kinds[ir.CFGBlockEntry] != 1 || kinds[ir.CFGBlockExit] != 1 {
		t.Errorf("expected exactly one Entry and one Exit block, got %+v", kinds)
	}
	if kinds[ir.CFGBlockIf] != 1 {
		t.Errorf("expected exactly one If block, got %d", kinds[ir.CFGBlockIf])
	}
	if kinds[ir.CFGBlockElse] != 1 {
		t.Errorf("expected exactly one Else block, got %d", kinds[ir.CFGBlockElse])
	}

	var sawTrue, sawFalse bool
	for _, e := range res.Edges {
		switch e.Label {
		case ir.CFGEdgeTrue:
			sawTrue = true
		case ir.CFGEdgeFalse:
			sawFalse = true
		}
	}
	if !sawTrue || !sawFalse {
		t.Errorf("expected both a True and a False edge out of the If block")
	}

	if res.Dominator == nil {
		t.Fatal("expected a non-nil dominator tree")
	}
	var entryID string
	for _, b := range res.Blocks {
		if b.Kind == ir.CFGBlockEntry {
			entryID = b.ID
		}
	}
	if res.Dominator.Idom[entryID] != entryID {
		t.Errorf("expected entry block to dominate itself")
	}
}

func TestCFGBuilder_LoopBackEdge(t *testing.T) {
	const src = `package sample

func sumTo(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += i
	}
	return total
}
`
	front := parser.NewFrontend()
	tree, _, err := front.Parse(context.Background(), parser.LanguageGo, []byte(src), "sample.go")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fn := findFirstOfType(tree.Root, "function_declaration")
	body := fn.ChildByFieldName("body")

	node := &ir.Node{ID: "func:sumTo", Span: ir.Span{StartLine: 3, EndLine: 9}}
	res := NewCFGBuilder(NewLowerer()).Build(node, body, "go", tree.Content)

	var sawLoopHeader, sawBack bool
	for _, b := range res.Blocks {
		if b.Kind == ir.CFGBlockLoopHead {
			sawLoopHeader = true
		}
	}
	for _, e := range res.Edges {
		if e.Label == ir.CFGEdgeBack {
			sawBack = true
		}
	}
	if !sawLoopHeader {
		t.Errorf("expected a LoopHeader block")
	}
	if !sawBack {
		t.Errorf("expected a Back edge closing the loop")
	}

	if len(res.Expressions) == 0 {
		t.Errorf("expected lowered statement expressions to be attached during the walk")
	}
	var totalStatements int
	for _, b := range res.Blocks {
		totalStatements += len(b.StatementExprIDs)
	}
	if totalStatements == 0 {
		t.Errorf("expected at least one block to carry StatementExprIDs")
	}
}

func TestCFGBuilder_Deterministic(t *testing.T) {
	const src = `package sample

func classify(n int) string {
	if n > 0 {
		return "positive"
	}
	return "non-positive"
}
`
	front := parser.NewFrontend()

	run := func() *Result {
		tree, _, err := front.Parse(context.Background(), parser.LanguageGo, []byte(src), "sample.go")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		fn := findFirstOfType(tree.Root, "function_declaration")
		body := fn.ChildByFieldName("body")
		node := &ir.Node{ID: "func:classify"}
		return NewCFGBuilder(NewLowerer()).Build(node, body, "go", tree.Content)
	}

	first := run()
	second := run()
	if len(first.Blocks) != len(second.Blocks) {
		t.Fatalf("expected stable block count across runs")
	}
	for i := range first.Blocks {
		if first.Blocks[i].ID != second.Blocks[i].ID {
			t.Errorf("block %d ID differs across runs: %q vs %q", i, first.Blocks[i].ID, second.Blocks[i].ID)
		}
	}
}
