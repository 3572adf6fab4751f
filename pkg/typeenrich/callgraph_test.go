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

package typeenrich

import (
	"testing"

	"github.com/kraklabs/cie/pkg/ir"
)

func TestCallgraphStep_PassthroughCopiesCalleeReturnType(t *testing.T) {
	doc := ir.NewIRDocument("1", "repo", "snap")
	callee := namedFunc("helper")
	caller := namedFunc("wrapper")
	doc.Nodes = append(doc.Nodes, *callee, *caller)
	doc.Signatures = append(doc.Signatures, ir.SignatureEntity{NodeID: callee.ID, ReturnType: "int"})

	doc.Expressions = append(doc.Expressions,
		ir.Expression{ID: "call1", Kind: ir.ExprKindCall, FunctionNodeID: caller.ID, CalleeName: "helper"},
		ir.Expression{ID: "ret1", Kind: ir.ExprKindReturn, FunctionNodeID: caller.ID, ChildIDs: []string{"call1"}},
	)
	doc.CFGBlocks = append(doc.CFGBlocks, ir.CFGBlock{
		ID: "b1", FunctionNodeID: caller.ID, StatementExprIDs: []string{"ret1"},
	})

	dc := newDocContext(doc)
	res, ok := callgraphStep(dc, caller)
	if !ok || res.typeExpr != "int" {
		t.Fatalf("expected passthrough to copy int, got %+v ok=%v", res, ok)
	}
}

func TestCallgraphStep_MultiStatementDeclines(t *testing.T) {
	doc := ir.NewIRDocument("1", "repo", "snap")
	caller := namedFunc("wrapper")
	doc.Expressions = append(doc.Expressions,
		ir.Expression{ID: "s1", Kind: ir.ExprKindAssign, FunctionNodeID: caller.ID},
		ir.Expression{ID: "call1", Kind: ir.ExprKindCall, FunctionNodeID: caller.ID, CalleeName: "helper"},
		ir.Expression{ID: "ret1", Kind: ir.ExprKindReturn, FunctionNodeID: caller.ID, ChildIDs: []string{"call1"}},
	)
	doc.CFGBlocks = append(doc.CFGBlocks, ir.CFGBlock{
		ID: "b1", FunctionNodeID: caller.ID, StatementExprIDs: []string{"s1", "ret1"},
	})
	dc := newDocContext(doc)
	if _, ok := callgraphStep(dc, caller); ok {
		t.Fatalf("expected a multi-statement body to decline")
	}
}

func TestCallgraphStep_AmbiguousCalleeDeclines(t *testing.T) {
	doc := ir.NewIRDocument("1", "repo", "snap")
	caller := namedFunc("wrapper")
	a := &ir.Node{ID: "func:a/helper", Kind: ir.NodeKindFunction, Name: "helper", FilePath: "a.py", Span: ir.Span{StartLine: 1, EndLine: 2}}
	b := &ir.Node{ID: "func:b/helper", Kind: ir.NodeKindFunction, Name: "helper", FilePath: "b.py", Span: ir.Span{StartLine: 1, EndLine: 2}}
	doc.Nodes = append(doc.Nodes, *a, *b)
	doc.Expressions = append(doc.Expressions,
		ir.Expression{ID: "call1", Kind: ir.ExprKindCall, FunctionNodeID: caller.ID, CalleeName: "helper"},
		ir.Expression{ID: "ret1", Kind: ir.ExprKindReturn, FunctionNodeID: caller.ID, ChildIDs: []string{"call1"}},
	)
	doc.CFGBlocks = append(doc.CFGBlocks, ir.CFGBlock{
		ID: "b1", FunctionNodeID: caller.ID, StatementExprIDs: []string{"ret1"},
	})
	dc := newDocContext(doc)
	if _, ok := callgraphStep(dc, caller); ok {
		t.Fatalf("expected an ambiguous callee name to decline rather than guess")
	}
}
