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
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/parser"
)

// GoGenerator emits structural IR for Go source files.
type GoGenerator struct{}

// goWalkContext accumulates state while walking one file's AST, split
// into a function-discovery pass and a call-resolution pass (functions are discovered in a first pass so call resolution has the
// full funcNameToID table before the second pass runs).
type goWalkContext struct {
	repoID       string
	filePath     string
	content      []byte
	fileNodeID   string
	funcNameToID map[string]string
	funcNodes    []funcWithAST
	occIdx       *ir.CallOccurrenceIndex
}

type funcWithAST struct {
	node   ir.Node
	ast    *sitter.Node
	fqn    string
}

// EmitStructuralIR implements Generator for Go.
func (g *GoGenerator) EmitStructuralIR(tree *parser.AstTree, file FileInput, doc *ir.IRDocument) (*FileResult, error) {
	res := &FileResult{}

	fileNodeID := ir.NodeID(file.RepoID, ir.NodeKindFile, file.Path, file.Path, "go")
	packageName := extractGoPackageName(tree.Root, tree.Content)
	fileNode := ir.Node{
		ID:          fileNodeID,
		Kind:        ir.NodeKindFile,
		Name:        file.Path,
		FilePath:    file.Path,
		Span:        parser.SpanOf(tree.Root),
		Language:    "go",
		ContentHash: ir.ContentHash(file.Content),
		Attrs:       ir.Attrs{"package": ir.StringAttr(packageName)},
	}
	res.Nodes = append(res.Nodes, fileNode)

	ctx := &goWalkContext{
		repoID:       file.RepoID,
		filePath:     file.Path,
		content:      tree.Content,
		fileNodeID:   fileNodeID,
		funcNameToID: map[string]string{},
		occIdx:       ir.NewCallOccurrenceIndex(),
	}

	walkGoDecls(tree.Root, ctx, "")

	for _, fw := range ctx.funcNodes {
		res.Nodes = append(res.Nodes, fw.node)
		res.Edges = append(res.Edges, containsEdge(fileNodeID, fw.node.ID))
	}

	for _, fw := range ctx.funcNodes {
		res.Edges = append(res.Edges, extractGoCalls(fw, ctx)...)
	}

	typeNodes, typeEdges := extractGoTypes(tree.Root, tree.Content, file.RepoID, file.Path, fileNodeID)
	res.Nodes = append(res.Nodes, typeNodes...)
	res.Edges = append(res.Edges, typeEdges...)

	importNodes, importEdges := extractGoImports(tree.Root, tree.Content, file.RepoID, file.Path, fileNodeID)
	res.Nodes = append(res.Nodes, importNodes...)
	res.Edges = append(res.Edges, importEdges...)

	return res, nil
}

func containsEdge(parentID, childID string) ir.Edge {
	return ir.Edge{
		ID:       ir.EdgeID(ir.EdgeKindContains, parentID, childID, 0),
		Kind:     ir.EdgeKindContains,
		SourceID: parentID,
		TargetID: childID,
	}
}

func walkGoDecls(node *sitter.Node, ctx *goWalkContext, parentID string) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "function_declaration":
		if fn := extractGoFunctionDecl(node, ctx); fn != nil {
			ctx.funcNameToID[fn.node.Name] = fn.node.ID
			ctx.funcNodes = append(ctx.funcNodes, *fn)
		}
	case "method_declaration":
		if fn := extractGoMethodDecl(node, ctx); fn != nil {
			simpleName := fn.node.Name
			if idx := strings.LastIndex(simpleName, "."); idx >= 0 {
				simpleName = simpleName[idx+1:]
			}
			ctx.funcNameToID[simpleName] = fn.node.ID
			ctx.funcNodes = append(ctx.funcNodes, *fn)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkGoDecls(node.Child(i), ctx, parentID)
	}
}

func extractGoFunctionDecl(node *sitter.Node, ctx *goWalkContext) *funcWithAST {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := parser.TextOf(nameNode, ctx.content)
	sig := buildGoSignature(node, ctx.content, name, "")
	bodySpan := bodySpanOf(node)
	id := ir.NodeID(ctx.repoID, ir.NodeKindFunction, ctx.filePath, name, "go")
	n := ir.Node{
		ID:       id,
		Kind:     ir.NodeKindFunction,
		Name:     name,
		FilePath: ctx.filePath,
		Span:     parser.SpanOf(node),
		Language: "go",
		ParentID: ctx.fileNodeID,
		BodySpan: bodySpan,
		Attrs:    ir.Attrs{"signature": ir.StringAttr(sig)},
	}
	return &funcWithAST{node: n, ast: node, fqn: name}
}

func extractGoMethodDecl(node *sitter.Node, ctx *goWalkContext) *funcWithAST {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	methodName := parser.TextOf(nameNode, ctx.content)
	receiverType := ""
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		receiverType = extractGoReceiverType(recv, ctx.content)
	}
	fqn := methodName
	if receiverType != "" {
		fqn = receiverType + "." + methodName
	}
	sig := buildGoSignature(node, ctx.content, methodName, receiverType)
	bodySpan := bodySpanOf(node)
	id := ir.NodeID(ctx.repoID, ir.NodeKindMethod, ctx.filePath, fqn, "go")
	n := ir.Node{
		ID:       id,
		Kind:     ir.NodeKindMethod,
		Name:     fqn,
		FilePath: ctx.filePath,
		Span:     parser.SpanOf(node),
		Language: "go",
		ParentID: ctx.fileNodeID,
		BodySpan: bodySpan,
		Attrs:    ir.Attrs{"signature": ir.StringAttr(sig), "receiver_type": ir.StringAttr(receiverType)},
	}
	return &funcWithAST{node: n, ast: node, fqn: fqn}
}

func extractGoReceiverType(receiverNode *sitter.Node, content []byte) string {
	for i := 0; i < int(receiverNode.ChildCount()); i++ {
		child := receiverNode.Child(i)
		if child.Type() == "parameter_declaration" {
			typeNode := child.ChildByFieldName("type")
			if typeNode == nil {
				continue
			}
			text := parser.TextOf(typeNode, content)
			return strings.TrimPrefix(text, "*")
		}
	}
	return ""
}

func buildGoSignature(node *sitter.Node, content []byte, name, receiverType string) string {
	var b strings.Builder
	b.WriteString("func ")
	if receiverType != "" {
		b.WriteString("(" + receiverType + ") ")
	}
	b.WriteString(name)
	if tp := node.ChildByFieldName("type_parameters"); tp != nil {
		b.WriteString(parser.TextOf(tp, content))
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		b.WriteString(parser.TextOf(params, content))
	}
	if result := node.ChildByFieldName("result"); result != nil {
		b.WriteString(" ")
		b.WriteString(parser.TextOf(result, content))
	}
	return b.String()
}

func bodySpanOf(node *sitter.Node) *ir.Span {
	body := node.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	s := parser.SpanOf(body)
	return &s
}

func extractGoPackageName(root *sitter.Node, content []byte) string {
	if root == nil {
		return ""
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() == "package_clause" {
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				return parser.TextOf(nameNode, content)
			}
		}
	}
	return ""
}

func extractGoCalls(fw funcWithAST, ctx *goWalkContext) []ir.Edge {
	body := fw.ast.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var edges []ir.Edge
	walkGoCallExprs(body, ctx.content, fw.node.ID, ctx, &edges)
	return edges
}

func walkGoCallExprs(node *sitter.Node, content []byte, callerID string, ctx *goWalkContext, out *[]ir.Edge) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if fnNode := node.ChildByFieldName("function"); fnNode != nil {
			simpleName := calleeSimpleName(fnNode, content)
			if calleeID, ok := ctx.funcNameToID[simpleName]; ok && calleeID != callerID {
				occ := ctx.occIdx.Next(callerID, calleeID)
				span := parser.SpanOf(node)
				*out = append(*out, ir.Edge{
					ID:       ir.EdgeID(ir.EdgeKindCalls, callerID, calleeID, occ),
					Kind:     ir.EdgeKindCalls,
					SourceID: callerID,
					TargetID: calleeID,
					Span:     &span,
				})
			} else if fullName := calleeFullName(fnNode, content); fullName != "" && calleeID == "" {
				occ := ctx.occIdx.Next(callerID, fullName)
				span := parser.SpanOf(node)
				*out = append(*out, ir.Edge{
					ID:               ir.EdgeID(ir.EdgeKindCalls, callerID, fullName, occ),
					Kind:             ir.EdgeKindCalls,
					SourceID:         callerID,
					UnresolvedTarget: fullName,
					Span:             &span,
				})
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkGoCallExprs(node.Child(i), content, callerID, ctx, out)
	}
}

func calleeSimpleName(fnNode *sitter.Node, content []byte) string {
	switch fnNode.Type() {
	case "identifier":
		return parser.TextOf(fnNode, content)
	case "selector_expression":
		if field := fnNode.ChildByFieldName("field"); field != nil {
			return parser.TextOf(field, content)
		}
	}
	return ""
}

func calleeFullName(fnNode *sitter.Node, content []byte) string {
	if fnNode.Type() == "selector_expression" {
		return parser.TextOf(fnNode, content)
	}
	return parser.TextOf(fnNode, content)
}

func extractGoTypes(root *sitter.Node, content []byte, repoID, filePath, fileNodeID string) ([]ir.Node, []ir.Edge) {
	var nodes []ir.Node
	var edges []ir.Edge
	walkGoTypeDecls(root, content, repoID, filePath, fileNodeID, &nodes, &edges)
	return nodes, edges
}

func walkGoTypeDecls(node *sitter.Node, content []byte, repoID, filePath, fileNodeID string, nodes *[]ir.Node, edges *[]ir.Edge) {
	if node == nil {
		return
	}
	if node.Type() == "type_declaration" {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "type_spec":
				emitGoTypeSpec(child, content, repoID, filePath, fileNodeID, nodes, edges)
			case "type_spec_list":
				for j := 0; j < int(child.ChildCount()); j++ {
					spec := child.Child(j)
					if spec.Type() == "type_spec" {
						emitGoTypeSpec(spec, content, repoID, filePath, fileNodeID, nodes, edges)
					}
				}
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walkGoTypeDecls(node.Child(i), content, repoID, filePath, fileNodeID, nodes, edges)
	}
}

func emitGoTypeSpec(node *sitter.Node, content []byte, repoID, filePath, fileNodeID string, nodes *[]ir.Node, edges *[]ir.Edge) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.TextOf(nameNode, content)
	typeNode := node.ChildByFieldName("type")
	kind, ok := determineGoTypeKind(typeNode)
	if !ok {
		return
	}
	id := ir.NodeID(repoID, kind, filePath, name, "go")
	n := ir.Node{
		ID:       id,
		Kind:     kind,
		Name:     name,
		FilePath: filePath,
		Span:     parser.SpanOf(node),
		Language: "go",
		ParentID: fileNodeID,
	}
	*nodes = append(*nodes, n)
	*edges = append(*edges, containsEdge(fileNodeID, id))
}

func determineGoTypeKind(typeNode *sitter.Node) (ir.NodeKind, bool) {
	if typeNode == nil {
		return "", false
	}
	switch typeNode.Type() {
	case "struct_type":
		return ir.NodeKindClass, true
	case "interface_type":
		return ir.NodeKindInterface, true
	case "type_identifier", "pointer_type", "array_type", "slice_type",
		"map_type", "channel_type", "function_type", "generic_type":
		return ir.NodeKindTypeAlias, true
	default:
		return "", false
	}
}

func extractGoImports(root *sitter.Node, content []byte, repoID, filePath, fileNodeID string) ([]ir.Node, []ir.Edge) {
	var nodes []ir.Node
	var edges []ir.Edge
	if root == nil {
		return nodes, edges
	}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() != "import_declaration" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			spec := child.Child(j)
			switch spec.Type() {
			case "import_spec":
				emitGoImportSpec(spec, content, repoID, filePath, fileNodeID, &nodes, &edges)
			case "import_spec_list":
				for k := 0; k < int(spec.ChildCount()); k++ {
					inner := spec.Child(k)
					if inner.Type() == "import_spec" {
						emitGoImportSpec(inner, content, repoID, filePath, fileNodeID, &nodes, &edges)
					}
				}
			}
		}
	}
	return nodes, edges
}

func emitGoImportSpec(node *sitter.Node, content []byte, repoID, filePath, fileNodeID string, nodes *[]ir.Node, edges *[]ir.Edge) {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	importPath := strings.Trim(parser.TextOf(pathNode, content), `"`)
	alias := ""
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		alias = parser.TextOf(nameNode, content)
	}
	id := ir.NodeID(repoID, ir.NodeKindImport, filePath, importPath, "go")
	n := ir.Node{
		ID:       id,
		Kind:     ir.NodeKindImport,
		Name:     importPath,
		FilePath: filePath,
		Span:     parser.SpanOf(node),
		Language: "go",
		ParentID: fileNodeID,
		Attrs:    ir.Attrs{"alias": ir.StringAttr(alias)},
	}
	*nodes = append(*nodes, n)
	*edges = append(*edges, ir.Edge{
		ID:               ir.EdgeID(ir.EdgeKindImports, fileNodeID, importPath, 0),
		Kind:             ir.EdgeKindImports,
		SourceID:         fileNodeID,
		UnresolvedTarget: importPath,
	})
}
