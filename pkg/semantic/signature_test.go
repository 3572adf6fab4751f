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

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/parser"
)

func findFirstOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == typ {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := findFirstOfType(n.Child(i), typ); found != nil {
			return found
		}
	}
	return nil
}

func TestSignatureBuilder_Go(t *testing.T) {
	const src = `package sample

func Divide(a int, b int) (int, error) {
	return a / b, nil
}
`
	front := parser.NewFrontend()
	tree, _, err := front.Parse(context.Background(), parser.LanguageGo, []byte(src), "sample.go")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fn := findFirstOfType(tree.Root, "function_declaration")
	if fn == nil {
		t.Fatal("expected a function_declaration node")
	}

	node := &ir.Node{ID: "func:divide", Name: "Divide"}
	sig := NewSignatureBuilder(NewTypeResolver()).Build(node, fn, tree.Content, "go")

	if len(sig.Params) != 2 {
		t.Fatalf("expected 2 params, got %d: %+v", len(sig.Params), sig.Params)
	}
	if sig.Params[0].Name != "a" || sig.Params[0].TypeExpr != "int" {
		t.Errorf("unexpected first param: %+v", sig.Params[0])
	}
	if sig.Params[1].Name != "b" || sig.Params[1].TypeExpr != "int" {
		t.Errorf("unexpected second param: %+v", sig.Params[1])
	}
	if sig.ReturnType == "" {
		t.Errorf("expected a non-empty return type")
	}
	if got := node.Attrs.StringOr("signature_id", ""); got != node.ID {
		t.Errorf("expected signature_id attr to be stamped with node ID, got %q", got)
	}
}

func TestSignatureBuilder_Python(t *testing.T) {
	const src = `class Greeter:
    def greet(self, name: str, count = 0, *args, **kwargs):
        return name
`
	front := parser.NewFrontend()
	tree, _, err := front.Parse(context.Background(), parser.LanguagePython, []byte(src), "sample.py")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fn := findFirstOfType(tree.Root, "function_definition")
	if fn == nil {
		t.Fatal("expected a function_definition node")
	}

	node := &ir.Node{ID: "func:greet", Name: "greet"}
	sig := NewSignatureBuilder(NewTypeResolver()).Build(node, fn, tree.Content, "python")

	names := map[string]ir.SignatureParam{}
	for _, p := range sig.Params {
		names[p.Name] = p
	}
	if _, ok := names["self"]; ok {
		t.Errorf("expected self to be filtered out of params")
	}
	if names["name"].TypeExpr != "str" {
		t.Errorf("expected name:str, got %+v", names["name"])
	}
	if !names["count"].HasDefault {
		t.Errorf("expected count to be flagged HasDefault")
	}
	if !names["args"].Variadic {
		t.Errorf("expected args to be flagged Variadic")
	}
}

func TestSignatureBuilder_TypeScript(t *testing.T) {
	const src = `function build(name: string, count: number = 0): string {
	return name;
}
`
	front := parser.NewFrontend()
	tree, _, err := front.Parse(context.Background(), parser.LanguageTypeScript, []byte(src), "sample.ts")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	fn := findFirstOfType(tree.Root, "function_declaration")
	if fn == nil {
		t.Fatal("expected a function_declaration node")
	}

	node := &ir.Node{ID: "func:build", Name: "build"}
	sig := NewSignatureBuilder(NewTypeResolver()).Build(node, fn, tree.Content, "typescript")

	if len(sig.Params) != 2 {
		t.Fatalf("expected 2 params, got %d: %+v", len(sig.Params), sig.Params)
	}
	if sig.Params[0].TypeExpr != "string" {
		t.Errorf("expected first param type string, got %q", sig.Params[0].TypeExpr)
	}
	if !sig.Params[1].HasDefault {
		t.Errorf("expected count to be flagged HasDefault")
	}
	if sig.ReturnType != "string" {
		t.Errorf("expected return type string, got %q", sig.ReturnType)
	}
}
