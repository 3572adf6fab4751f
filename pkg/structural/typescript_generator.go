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
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/parser"
)

// TypeScriptGenerator emits structural IR for JavaScript and TypeScript
// source files (arrow functions, function/method declarations, classes,
// interfaces, and type aliases).
type TypeScriptGenerator struct{}

type tsWalkContext struct {
	repoID       string
	filePath     string
	language     string
	content      []byte
	fileNodeID   string
	funcNameToID map[string]string
	funcNodes    []funcWithAST
	anonCounter  int
	occIdx       *ir.CallOccurrenceIndex
}

func (g *TypeScriptGenerator) EmitStructuralIR(tree *parser.AstTree, file FileInput, doc *ir.IRDocument) (*FileResult, error) {
	res := &FileResult{}
	lang := string(file.Language)

	fileNodeID := ir.NodeID(file.RepoID, ir.NodeKindFile, file.Path, file.Path, lang)
	fileNode := ir.Node{
		ID:          fileNodeID,
		Kind:        ir.NodeKindFile,
		Name:        file.Path,
		FilePath:    file.Path,
		Span:        parser.SpanOf(tree.Root),
		Language:    lang,
		ContentHash: ir.ContentHash(file.Content),
	}
	res.Nodes = append(res.Nodes, fileNode)

	ctx := &tsWalkContext{
		repoID:       file.RepoID,
		filePath:     file.Path,
		language:     lang,
		content:      tree.Content,
		fileNodeID:   fileNodeID,
		funcNameToID: map[string]string{},
		occIdx:       ir.NewCallOccurrenceIndex(),
	}

	walkTSFunctions(tree.Root, ctx)

	for _, fw := range ctx.funcNodes {
		res.Nodes = append(res.Nodes, fw.node)
		res.Edges = append(res.Edges, containsEdge(fileNodeID, fw.node.ID))
	}
	for _, fw := range ctx.funcNodes {
		res.Edges = append(res.Edges, walkTSCalls(fw, ctx)...)
	}

	typeNodes, typeEdges := extractTSTypes(tree.Root, tree.Content, file.RepoID, file.Path, fileNodeID, lang)
	res.Nodes = append(res.Nodes, typeNodes...)
	res.Edges = append(res.Edges, typeEdges...)

	importNodes, importEdges := extractTSImports(tree.Root, tree.Content, file.RepoID, file.Path, fileNodeID, lang)
	res.Nodes = append(res.Nodes, importNodes...)
	res.Edges = append(res.Edges, importEdges...)

	return res, nil
}

func walkTSFunctions(node *sitter.Node, ctx *tsWalkContext) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_declaration", "function_signature":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name := parser.TextOf(nameNode, ctx.content)
			fw := buildTSFuncNode(node, ctx, name, ir.NodeKindFunction)
			ctx.funcNameToID[name] = fw.node.ID
			ctx.funcNodes = append(ctx.funcNodes, fw)
		}
	case "method_definition", "method_signature":
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			name := parser.TextOf(nameNode, ctx.content)
			fw := buildTSFuncNode(node, ctx, name, ir.NodeKindMethod)
			ctx.funcNameToID[name] = fw.node.ID
			ctx.funcNodes = append(ctx.funcNodes, fw)
		}
	case "variable_declarator":
		nameNode := node.ChildByFieldName("name")
		valueNode := node.ChildByFieldName("value")
		if nameNode != nil && valueNode != nil {
			switch valueNode.Type() {
			case "arrow_function", "function_expression", "function":
				name := parser.TextOf(nameNode, ctx.content)
				fw := buildTSFuncNode(valueNode, ctx, name, ir.NodeKindArrowFunction)
				ctx.funcNameToID[name] = fw.node.ID
				ctx.funcNodes = append(ctx.funcNodes, fw)
			}
		}
	case "arrow_function":
		if parent := node.Parent(); parent == nil || parent.Type() != "variable_declarator" {
			ctx.anonCounter++
			name := syntheticAnonName(ctx.anonCounter)
			fw := buildTSFuncNode(node, ctx, name, ir.NodeKindArrowFunction)
			ctx.funcNodes = append(ctx.funcNodes, fw)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTSFunctions(node.Child(i), ctx)
	}
}

func syntheticAnonName(n int) string {
	return "<anonymous-" + itoa(n) + ">"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func buildTSFuncNode(node *sitter.Node, ctx *tsWalkContext, name string, kind ir.NodeKind) funcWithAST {
	id := ir.NodeID(ctx.repoID, kind, ctx.filePath, name, ctx.language)
	n := ir.Node{
		ID:       id,
		Kind:     kind,
		Name:     name,
		FilePath: ctx.filePath,
		Span:     parser.SpanOf(node),
		Language: ctx.language,
		ParentID: ctx.fileNodeID,
		BodySpan: bodySpanOf(node),
	}
	return funcWithAST{node: n, ast: node, fqn: name}
}

func walkTSCalls(fw funcWithAST, ctx *tsWalkContext) []ir.Edge {
	body := fw.ast.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var edges []ir.Edge
	walkTSCallExprs(body, ctx, fw.node.ID, &edges)
	return edges
}

func walkTSCallExprs(node *sitter.Node, ctx *tsWalkContext, callerID string, out *[]ir.Edge) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if fnNode := node.ChildByFieldName("function"); fnNode != nil {
			name := tsCalleeName(fnNode, ctx.content)
			if name != "" {
				span := parser.SpanOf(node)
				if calleeID, ok := ctx.funcNameToID[name]; ok && calleeID != callerID {
					occ := ctx.occIdx.Next(callerID, calleeID)
					*out = append(*out, ir.Edge{
						ID:       ir.EdgeID(ir.EdgeKindCalls, callerID, calleeID, occ),
						Kind:     ir.EdgeKindCalls,
						SourceID: callerID,
						TargetID: calleeID,
						Span:     &span,
					})
				} else if !ok {
					occ := ctx.occIdx.Next(callerID, name)
					*out = append(*out, ir.Edge{
						ID:               ir.EdgeID(ir.EdgeKindCalls, callerID, name, occ),
						Kind:             ir.EdgeKindCalls,
						SourceID:         callerID,
						UnresolvedTarget: name,
						Span:             &span,
					})
				}
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTSCallExprs(node.Child(i), ctx, callerID, out)
	}
}

func tsCalleeName(fnNode *sitter.Node, content []byte) string {
	switch fnNode.Type() {
	case "identifier":
		return parser.TextOf(fnNode, content)
	case "member_expression":
		if prop := fnNode.ChildByFieldName("property"); prop != nil {
			return parser.TextOf(prop, content)
		}
	}
	return ""
}

func extractTSTypes(root *sitter.Node, content []byte, repoID, filePath, fileNodeID, lang string) ([]ir.Node, []ir.Edge) {
	var nodes []ir.Node
	var edges []ir.Edge
	walkTSTypeDecls(root, content, repoID, filePath, fileNodeID, lang, &nodes, &edges)
	return nodes, edges
}

func walkTSTypeDecls(node *sitter.Node, content []byte, repoID, filePath, fileNodeID, lang string, nodes *[]ir.Node, edges *[]ir.Edge) {
	if node == nil {
		return
	}
	var kind ir.NodeKind
	var nameNode *sitter.Node
	switch node.Type() {
	case "interface_declaration":
		kind = ir.NodeKindInterface
		nameNode = node.ChildByFieldName("name")
	case "class_declaration":
		kind = ir.NodeKindClass
		nameNode = node.ChildByFieldName("name")
	case "type_alias_declaration":
		kind = ir.NodeKindTypeAlias
		nameNode = node.ChildByFieldName("name")
	case "enum_declaration":
		kind = ir.NodeKindEnum
		nameNode = node.ChildByFieldName("name")
	}
	if nameNode != nil {
		name := parser.TextOf(nameNode, content)
		id := ir.NodeID(repoID, kind, filePath, name, lang)
		n := ir.Node{
			ID:       id,
			Kind:     kind,
			Name:     name,
			FilePath: filePath,
			Span:     parser.SpanOf(node),
			Language: lang,
			ParentID: fileNodeID,
		}
		*nodes = append(*nodes, n)
		*edges = append(*edges, containsEdge(fileNodeID, id))
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkTSTypeDecls(node.Child(i), content, repoID, filePath, fileNodeID, lang, nodes, edges)
	}
}

func extractTSImports(root *sitter.Node, content []byte, repoID, filePath, fileNodeID, lang string) ([]ir.Node, []ir.Edge) {
	var nodes []ir.Node
	var edges []ir.Edge
	if root == nil {
		return nodes, edges
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "import_statement" {
			continue
		}
		sourceNode := child.ChildByFieldName("source")
		if sourceNode == nil {
			continue
		}
		modulePath := trimQuotes(parser.TextOf(sourceNode, content))
		id := ir.NodeID(repoID, ir.NodeKindImport, filePath, modulePath, lang)
		n := ir.Node{
			ID:       id,
			Kind:     ir.NodeKindImport,
			Name:     modulePath,
			FilePath: filePath,
			Span:     parser.SpanOf(child),
			Language: lang,
			ParentID: fileNodeID,
		}
		nodes = append(nodes, n)
		edges = append(edges, ir.Edge{
			ID:               ir.EdgeID(ir.EdgeKindImports, fileNodeID, modulePath, 0),
			Kind:             ir.EdgeKindImports,
			SourceID:         fileNodeID,
			UnresolvedTarget: modulePath,
		})
	}
	return nodes, edges
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}
