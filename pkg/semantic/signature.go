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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/parser"
	"github.com/kraklabs/cie/pkg/sigparse"
)

// paramListTypes are the tree-sitter node type names that hold a
// function's parameter list, by language.
var paramListTypes = map[string]string{
	"go":         "parameter_list",
	"python":     "parameters",
	"javascript": "formal_parameters",
	"typescript": "formal_parameters",
}

// SignatureBuilder builds ir.SignatureEntity values from a function's
// AST node, using text-based parameter splitting (pkg/sigparse) rather
// than walking each grammar's individual parameter node shapes one
// field at a time.
type SignatureBuilder struct {
	resolver *TypeResolver
}

// NewSignatureBuilder constructs a builder sharing resolver's type cache.
func NewSignatureBuilder(resolver *TypeResolver) *SignatureBuilder {
	return &SignatureBuilder{resolver: resolver}
}

// Build produces the SignatureEntity for a function/method AST node and
// stamps the node's Attrs["signature_id"] with node.ID so downstream
// layers can look the signature back up via doc.Signatures.
func (b *SignatureBuilder) Build(node *ir.Node, ast *sitter.Node, content []byte, language string) *ir.SignatureEntity {
	paramTypeName, ok := paramListTypes[language]
	var rawParams string
	if ok {
		if plNode := findChildOfType(ast, paramTypeName); plNode != nil {
			rawParams = innerParenText(parser.TextOf(plNode, content))
		}
	}

	var infos []sigparse.ParamInfo
	switch language {
	case "go":
		infos = sigparse.ParseGoParams("func f(" + rawParams + ")")
	case "python":
		infos = sigparse.ParsePythonParams(rawParams)
	case "javascript", "typescript":
		infos = sigparse.ParseTSParams(rawParams)
	}

	params := make([]ir.SignatureParam, 0, len(infos))
	for _, info := range infos {
		if info.Name == "self" || info.Name == "cls" {
			continue
		}
		typeExpr := ""
		if info.Type != "" {
			typeExpr = b.resolver.Resolve(language, info.Type)
		}
		params = append(params, ir.SignatureParam{
			Name:       info.Name,
			TypeExpr:   typeExpr,
			HasDefault: info.HasDefault,
			Variadic:   info.Variadic,
		})
	}

	returnType := extractReturnType(ast, content, language)
	if returnType != "" {
		returnType = b.resolver.Resolve(language, returnType)
	}

	sig := &ir.SignatureEntity{
		NodeID:      node.ID,
		Params:      params,
		ReturnType:  returnType,
		IsAsync:     isAsyncDecl(ast, content, language),
		IsGenerator: isGeneratorDecl(ast, language),
	}

	if node.Attrs == nil {
		node.Attrs = ir.Attrs{}
	}
	node.Attrs.Set("signature_id", ir.StringAttr(node.ID))

	return sig
}

func innerParenText(s string) string {
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start == -1 || end == -1 || end <= start {
		return strings.Trim(s, "()")
	}
	return s[start+1 : end]
}

func findChildOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

func extractReturnType(ast *sitter.Node, content []byte, language string) string {
	switch language {
	case "go":
		if r := ast.ChildByFieldName("result"); r != nil {
			return parser.TextOf(r, content)
		}
	case "typescript":
		if r := ast.ChildByFieldName("return_type"); r != nil {
			return strings.TrimPrefix(parser.TextOf(r, content), ":")
		}
	}
	return ""
}

func isAsyncDecl(ast *sitter.Node, content []byte, language string) bool {
	switch language {
	case "python", "javascript", "typescript":
		for i := 0; i < int(ast.ChildCount()); i++ {
			if ast.Child(i).Type() == "async" {
				return true
			}
		}
	}
	return false
}

func isGeneratorDecl(ast *sitter.Node, language string) bool {
	if language != "python" {
		return false
	}
	var found bool
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || found {
			return
		}
		if n.Type() == "yield" {
			found = true
			return
		}
		if n.Type() == "function_definition" {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	if body := ast.ChildByFieldName("body"); body != nil {
		walk(body)
	}
	return found
}
