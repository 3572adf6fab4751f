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

// PythonGenerator emits structural IR for Python source files.
type PythonGenerator struct{}

type pyWalkContext struct {
	repoID       string
	filePath     string
	content      []byte
	fileNodeID   string
	funcNameToID map[string]string
	funcNodes    []funcWithAST
	occIdx       *ir.CallOccurrenceIndex
}

func (g *PythonGenerator) EmitStructuralIR(tree *parser.AstTree, file FileInput, doc *ir.IRDocument) (*FileResult, error) {
	res := &FileResult{}

	fileNodeID := ir.NodeID(file.RepoID, ir.NodeKindFile, file.Path, file.Path, "python")
	fileNode := ir.Node{
		ID:          fileNodeID,
		Kind:        ir.NodeKindFile,
		Name:        file.Path,
		FilePath:    file.Path,
		Span:        parser.SpanOf(tree.Root),
		Language:    "python",
		ContentHash: ir.ContentHash(file.Content),
	}
	res.Nodes = append(res.Nodes, fileNode)

	ctx := &pyWalkContext{
		repoID:       file.RepoID,
		filePath:     file.Path,
		content:      tree.Content,
		fileNodeID:   fileNodeID,
		funcNameToID: map[string]string{},
		occIdx:       ir.NewCallOccurrenceIndex(),
	}

	walkPyDecls(tree.Root, ctx, fileNodeID, &res.Nodes, &res.Edges)

	for _, fw := range ctx.funcNodes {
		res.Edges = append(res.Edges, walkPyCalls(fw, ctx)...)
	}

	importNodes, importEdges := extractPyImports(tree.Root, tree.Content, file.RepoID, file.Path, fileNodeID)
	res.Nodes = append(res.Nodes, importNodes...)
	res.Edges = append(res.Edges, importEdges...)

	return res, nil
}

func walkPyDecls(node *sitter.Node, ctx *pyWalkContext, parentID string, nodes *[]ir.Node, edges *[]ir.Edge) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			break
		}
		name := parser.TextOf(nameNode, ctx.content)
		kind := ir.NodeKindFunction
		if isInsidePyClass(node) {
			kind = ir.NodeKindMethod
		}
		docstring := pyDocstring(node, ctx.content)
		id := ir.NodeID(ctx.repoID, kind, ctx.filePath, name, "python")
		n := ir.Node{
			ID:        id,
			Kind:      kind,
			Name:      name,
			FilePath:  ctx.filePath,
			Span:      parser.SpanOf(node),
			Language:  "python",
			ParentID:  parentID,
			Docstring: docstring,
			BodySpan:  bodySpanOf(node),
		}
		*nodes = append(*nodes, n)
		*edges = append(*edges, containsEdge(parentID, id))
		ctx.funcNameToID[name] = id
		ctx.funcNodes = append(ctx.funcNodes, funcWithAST{node: n, ast: node, fqn: name})
		for i := 0; i < int(node.ChildCount()); i++ {
			walkPyDecls(node.Child(i), ctx, id, nodes, edges)
		}
		return
	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			break
		}
		name := parser.TextOf(nameNode, ctx.content)
		id := ir.NodeID(ctx.repoID, ir.NodeKindClass, ctx.filePath, name, "python")
		n := ir.Node{
			ID:        id,
			Kind:      ir.NodeKindClass,
			Name:      name,
			FilePath:  ctx.filePath,
			Span:      parser.SpanOf(node),
			Language:  "python",
			ParentID:  parentID,
			Docstring: pyDocstring(node, ctx.content),
		}
		*nodes = append(*nodes, n)
		*edges = append(*edges, containsEdge(parentID, id))
		for i := 0; i < int(node.ChildCount()); i++ {
			walkPyDecls(node.Child(i), ctx, id, nodes, edges)
		}
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkPyDecls(node.Child(i), ctx, parentID, nodes, edges)
	}
}

func isInsidePyClass(node *sitter.Node) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "class_definition" {
			return true
		}
		if p.Type() == "function_definition" {
			return false
		}
	}
	return false
}

func pyDocstring(node *sitter.Node, content []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.ChildCount() == 0 {
		return ""
	}
	first := body.Child(0)
	if first.Type() != "expression_statement" || first.ChildCount() == 0 {
		return ""
	}
	expr := first.Child(0)
	if expr.Type() != "string" {
		return ""
	}
	return trimQuotes(parser.TextOf(expr, content))
}

func walkPyCalls(fw funcWithAST, ctx *pyWalkContext) []ir.Edge {
	body := fw.ast.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var edges []ir.Edge
	walkPyCallExprs(body, ctx, fw.node.ID, &edges)
	return edges
}

func walkPyCallExprs(node *sitter.Node, ctx *pyWalkContext, callerID string, out *[]ir.Edge) {
	if node == nil {
		return
	}
	if node.Type() == "call" {
		if fnNode := node.ChildByFieldName("function"); fnNode != nil {
			name := pyCalleeName(fnNode, ctx.content)
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
		walkPyCallExprs(node.Child(i), ctx, callerID, out)
	}
}

func pyCalleeName(fnNode *sitter.Node, content []byte) string {
	switch fnNode.Type() {
	case "identifier":
		return parser.TextOf(fnNode, content)
	case "attribute":
		if attr := fnNode.ChildByFieldName("attribute"); attr != nil {
			return parser.TextOf(attr, content)
		}
	}
	return ""
}

func extractPyImports(root *sitter.Node, content []byte, repoID, filePath, fileNodeID string) ([]ir.Node, []ir.Edge) {
	var nodes []ir.Node
	var edges []ir.Edge
	if root == nil {
		return nodes, edges
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "import_statement", "import_from_statement":
			for j := 0; j < int(child.ChildCount()); j++ {
				n := child.Child(j)
				if n.Type() == "dotted_name" || n.Type() == "aliased_import" {
					modulePath := parser.TextOf(n, content)
					id := ir.NodeID(repoID, ir.NodeKindImport, filePath, modulePath, "python")
					node := ir.Node{
						ID:       id,
						Kind:     ir.NodeKindImport,
						Name:     modulePath,
						FilePath: filePath,
						Span:     parser.SpanOf(child),
						Language: "python",
						ParentID: fileNodeID,
					}
					nodes = append(nodes, node)
					edges = append(edges, ir.Edge{
						ID:               ir.EdgeID(ir.EdgeKindImports, fileNodeID, modulePath, 0),
						Kind:             ir.EdgeKindImports,
						SourceID:         fileNodeID,
						UnresolvedTarget: modulePath,
					})
				}
			}
		}
	}
	return nodes, edges
}
