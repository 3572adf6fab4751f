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

func TestInterproceduralLinker_ArgToParamAndReturn(t *testing.T) {
	const src = `package sample

func helper(v int) int {
	return v
}

func caller(n int) int {
	result := helper(n)
	return result
}
`
	front := parser.NewFrontend()
	tree, _, err := front.Parse(context.Background(), parser.LanguageGo, []byte(src), "sample.go")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	funcs := map[string]*FuncCtx{}
	var callExprSpan ir.Span
	var callerID, calleeID string

	for i := 0; i < int(tree.Root.ChildCount()); i++ {
		decl := tree.Root.Child(i)
		if decl.Type() != "function_declaration" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		name := parser.TextOf(nameNode, tree.Content)
		id := "func:" + name
		node := &ir.Node{ID: id, Name: name, Span: parser.SpanOf(decl)}

		body := decl.ChildByFieldName("body")
		lowerer := NewLowerer()
		exprs := lowerer.Lower(id, body, tree.Content)
		sig := NewSignatureBuilder(NewTypeResolver()).Build(node, decl, tree.Content, "go")
		cfgRes := NewCFGBuilder(lowerer).Build(node, body, "go", tree.Content)
		ssaCtx, _ := NewSSABuilder().Build(node, cfgRes.Blocks, cfgRes.Edges, cfgRes.Dominator, cfgRes.Expressions)

		funcs[id] = &FuncCtx{Node: node, Expressions: exprs, SSA: ssaCtx, Signature: sig}

		if name == "caller" {
			callerID = id
			for _, e := range exprs {
				if e.Kind == ir.ExprKindCall && e.CalleeName == "helper" {
					callExprSpan = e.Span
				}
			}
		}
		if name == "helper" {
			calleeID = id
		}
	}

	if callerID == "" || calleeID == "" {
		t.Fatal("expected both caller and helper functions to be discovered")
	}
	if callExprSpan == (ir.Span{}) {
		t.Fatal("expected to find the call expression span for helper(n)")
	}

	callEdge := ir.Edge{
		Kind:     ir.EdgeKindCalls,
		SourceID: callerID,
		TargetID: calleeID,
		Span:     &callExprSpan,
	}

	edges := NewInterproceduralLinker().Link(funcs, []ir.Edge{callEdge})

	var sawArg, sawReturn bool
	for _, e := range edges {
		if e.CalleeFunctionID != calleeID {
			continue
		}
		if e.CalleeParamIndex == CalleeParamReturn {
			sawReturn = true
			if e.CalleeReturnExprID == "" {
				t.Errorf("return edge must carry the callee return expression id: %+v", e)
			}
		} else if e.CalleeParamIndex == 0 {
			sawArg = true
		}
	}
	if !sawReturn {
		t.Errorf("expected a return->callsite InterproceduralEdge, got %+v", edges)
	}
	_ = sawArg // the lone argument is a bare identifier with no traced SSA version at this call site
}
