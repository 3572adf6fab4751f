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

func namedFunc(name string) *ir.Node {
	return &ir.Node{
		ID:       "func:" + name,
		Kind:     ir.NodeKindFunction,
		Name:     name,
		FilePath: "pkg/x.py",
		Span:     ir.Span{StartLine: 1, EndLine: 3},
	}
}

func TestConventionStep_Dunder(t *testing.T) {
	dc := newDocContext(ir.NewIRDocument("1", "repo", "snap"))
	res, ok := conventionStep(dc, namedFunc("__len__"))
	if !ok || res.typeExpr != "int" {
		t.Fatalf("expected __len__ -> int, got %+v ok=%v", res, ok)
	}
}

func TestConventionStep_TestFunction(t *testing.T) {
	dc := newDocContext(ir.NewIRDocument("1", "repo", "snap"))
	res, ok := conventionStep(dc, namedFunc("test_something"))
	if !ok || res.typeExpr != "None" {
		t.Fatalf("expected test_* -> None, got %+v ok=%v", res, ok)
	}
}

func TestConventionStep_Predicate(t *testing.T) {
	dc := newDocContext(ir.NewIRDocument("1", "repo", "snap"))
	res, ok := conventionStep(dc, namedFunc("is_valid"))
	if !ok || res.typeExpr != "bool" {
		t.Fatalf("expected is_* -> bool, got %+v ok=%v", res, ok)
	}
}

func TestConventionStep_MutatorWithoutValueReturn(t *testing.T) {
	doc := ir.NewIRDocument("1", "repo", "snap")
	n := namedFunc("set_name")
	doc.Expressions = append(doc.Expressions, ir.Expression{
		ID: "ret1", Kind: ir.ExprKindReturn, FunctionNodeID: n.ID,
	})
	doc.CFGBlocks = append(doc.CFGBlocks, ir.CFGBlock{
		ID: "b1", FunctionNodeID: n.ID, StatementExprIDs: []string{"ret1"},
	})
	dc := newDocContext(doc)
	res, ok := conventionStep(dc, n)
	if !ok || res.typeExpr != "None" {
		t.Fatalf("expected mutator with bare return -> None, got %+v ok=%v", res, ok)
	}
}

func TestConventionStep_MutatorWithValueReturnDeclines(t *testing.T) {
	doc := ir.NewIRDocument("1", "repo", "snap")
	n := namedFunc("set_name")
	doc.Expressions = append(doc.Expressions,
		ir.Expression{ID: "lit1", Kind: ir.ExprKindLiteral, FunctionNodeID: n.ID, Text: "self"},
		ir.Expression{ID: "ret1", Kind: ir.ExprKindReturn, FunctionNodeID: n.ID, ChildIDs: []string{"lit1"}},
	)
	doc.CFGBlocks = append(doc.CFGBlocks, ir.CFGBlock{
		ID: "b1", FunctionNodeID: n.ID, StatementExprIDs: []string{"ret1"},
	})
	dc := newDocContext(doc)
	if _, ok := conventionStep(dc, n); ok {
		t.Fatalf("expected mutator with value-returning return to decline the convention step")
	}
}

func TestConventionStep_NoMatchDeclines(t *testing.T) {
	dc := newDocContext(ir.NewIRDocument("1", "repo", "snap"))
	if _, ok := conventionStep(dc, namedFunc("compute_total")); ok {
		t.Fatalf("expected an unrecognized name to decline")
	}
}
