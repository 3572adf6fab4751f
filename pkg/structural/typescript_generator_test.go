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

package structural

import (
	"context"
	"testing"

	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/parser"
)

const tsFixture = `import { readFile } from "fs";

interface Greeting {
  text: string;
}

function buildGreeting(name: string): Greeting {
  return { text: greet(name) };
}

function greet(name: string): string {
  return "hello " + name;
}

const shout = (name: string) => greet(name).toUpperCase();

class Greeter {
  greet(name: string): string {
    return buildGreeting(name).text;
  }
}
`

func TestTypeScriptGenerator_EmitStructuralIR(t *testing.T) {
	front := parser.NewFrontend()
	tree, _, err := front.Parse(context.Background(), parser.LanguageTypeScript, []byte(tsFixture), "sample.ts")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	gen := &TypeScriptGenerator{}
	doc := ir.NewIRDocument("1", "repo1", "snap1")
	res, err := gen.EmitStructuralIR(tree, FileInput{RepoID: "repo1", Path: "sample.ts", Content: []byte(tsFixture), Language: parser.LanguageTypeScript}, doc)
	if err != nil {
		t.Fatalf("EmitStructuralIR: %v", err)
	}

	kinds := map[string]ir.NodeKind{}
	for _, n := range res.Nodes {
		// Greeter's greet method shares its name with the top-level
		// greet function; only the non-method declarations are checked.
		if n.Kind == ir.NodeKindMethod {
			continue
		}
		kinds[n.Name] = n.Kind
	}

	if kinds["greet"] != ir.NodeKindFunction {
		t.Errorf("expected greet to be a Function node, got %v", kinds["greet"])
	}
	if kinds["buildGreeting"] != ir.NodeKindFunction {
		t.Errorf("expected buildGreeting to be a Function node")
	}
	if kinds["shout"] != ir.NodeKindArrowFunction {
		t.Errorf("expected shout to be an ArrowFunction node, got %v", kinds["shout"])
	}
	if kinds["Greeting"] != ir.NodeKindInterface {
		t.Errorf("expected Greeting to be an Interface node, got %v", kinds["Greeting"])
	}
	if kinds["Greeter"] != ir.NodeKindClass {
		t.Errorf("expected Greeter to be a Class node, got %v", kinds["Greeter"])
	}

	var sawImport bool
	for _, e := range res.Edges {
		if e.Kind == ir.EdgeKindImports && e.UnresolvedTarget == "fs" {
			sawImport = true
		}
	}
	if !sawImport {
		t.Errorf("expected an Imports edge for 'fs'")
	}
}

func TestTypeScriptGenerator_AnonymousArrowFunction(t *testing.T) {
	src := `setTimeout(() => { doWork(); }, 10);`
	front := parser.NewFrontend()
	tree, _, err := front.Parse(context.Background(), parser.LanguageJavaScript, []byte(src), "anon.js")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	gen := &TypeScriptGenerator{}
	doc := ir.NewIRDocument("1", "repo1", "snap1")
	res, err := gen.EmitStructuralIR(tree, FileInput{RepoID: "repo1", Path: "anon.js", Content: []byte(src), Language: parser.LanguageJavaScript}, doc)
	if err != nil {
		t.Fatalf("EmitStructuralIR: %v", err)
	}

	var sawAnon bool
	for _, n := range res.Nodes {
		if n.Kind == ir.NodeKindArrowFunction && n.Name == "<anonymous-1>" {
			sawAnon = true
		}
	}
	if !sawAnon {
		t.Errorf("expected a synthesized <anonymous-1> arrow function node")
	}
}
