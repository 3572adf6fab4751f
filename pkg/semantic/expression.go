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
)

var callNodeTypes = map[string]bool{"call_expression": true, "call": true}
var binaryNodeTypes = map[string]bool{"binary_expression": true, "binary_operator": true}
var unaryNodeTypes = map[string]bool{"unary_expression": true, "unary_operator": true, "not_operator": true}
var assignNodeTypes = map[string]bool{
	"assignment_expression": true, "assignment": true, "short_var_declaration": true,
	"augmented_assignment": true, "augmented_assignment_expression": true,
}
var returnNodeTypes = map[string]bool{"return_statement": true}
var identifierNodeTypes = map[string]bool{"identifier": true, "field_identifier": true, "type_identifier": true}
var conditionNodeTypes = map[string]bool{"if_statement": true, "conditional_expression": true, "ternary_expression": true}
var attributeNodeTypes = map[string]bool{"selector_expression": true, "member_expression": true, "attribute": true}
var subscriptNodeTypes = map[string]bool{"index_expression": true, "subscript_expression": true, "subscript": true}
var awaitNodeTypes = map[string]bool{"await_expression": true}
var lambdaNodeTypes = map[string]bool{"func_literal": true, "arrow_function": true, "lambda": true, "function_expression": true}
var collectionNodeTypes = map[string]bool{
	"composite_literal": true, "list": true, "dictionary": true, "set": true, "tuple": true,
	"array": true, "object": true, "array_literal_expression": true,
}
var literalNodeTypes = map[string]bool{
	"int_literal": true, "float_literal": true, "string_literal": true, "interpreted_string_literal": true,
	"raw_string_literal": true, "rune_literal": true, "true": true, "false": true, "nil": true,
	"integer": true, "float": true, "string": true, "none": true,
	"number": true, "template_string": true, "regex": true, "null": true, "undefined": true,
}
var formatStringNodeTypes = map[string]bool{"formatted_string_literal": true, "template_string": true}

// Lowerer walks a function's body AST and emits ir.Expression entries for
// every statement and sub-expression that matters to data-flow and taint
// propagation: calls, binary/unary ops, assignments, returns, conditions,
// identifiers, and literals (every call argument is lowered, including
// bare literals, so constant arguments still participate in taint
// propagation as constant sources).
type Lowerer struct{}

// NewLowerer constructs a stateless Lowerer.
func NewLowerer() *Lowerer { return &Lowerer{} }

// Lower walks body and returns one ir.Expression per recognized node,
// children before their parents. It does not return the per-statement
// root IDs; CFGBuilder collects those for CFGBlock.StatementExprIDs as it
// walks.
func (lw *Lowerer) Lower(functionNodeID string, body *sitter.Node, content []byte) []ir.Expression {
	var out []ir.Expression
	if body == nil {
		return out
	}
	lw.walk(functionNodeID, body, content, &out)
	return out
}

func (lw *Lowerer) walk(fnID string, n *sitter.Node, content []byte, out *[]ir.Expression) string {
	if n == nil {
		return ""
	}
	typ := n.Type()

	switch {
	case callNodeTypes[typ]:
		return lw.lowerCall(fnID, n, content, out)
	case binaryNodeTypes[typ]:
		return lw.lowerBinary(fnID, n, content, out)
	case unaryNodeTypes[typ]:
		return lw.lowerUnary(fnID, n, content, out)
	case assignNodeTypes[typ]:
		return lw.lowerAssign(fnID, n, content, out)
	case returnNodeTypes[typ]:
		return lw.lowerReturn(fnID, n, content, out)
	case conditionNodeTypes[typ]:
		return lw.lowerCondition(fnID, n, content, out)
	case attributeNodeTypes[typ]:
		return lw.lowerSimple(fnID, ir.ExprKindAttribute, n, content, out)
	case subscriptNodeTypes[typ]:
		return lw.lowerSimple(fnID, ir.ExprKindSubscript, n, content, out)
	case awaitNodeTypes[typ]:
		return lw.lowerWrapping(fnID, ir.ExprKindAwait, n, content, out)
	case lambdaNodeTypes[typ]:
		return lw.lowerSimple(fnID, ir.ExprKindLambda, n, content, out)
	case collectionNodeTypes[typ]:
		return lw.lowerSimple(fnID, ir.ExprKindCollection, n, content, out)
	case formatStringNodeTypes[typ]:
		return lw.lowerSimple(fnID, ir.ExprKindFString, n, content, out)
	case identifierNodeTypes[typ]:
		return lw.lowerLeaf(fnID, ir.ExprKindIdentifier, n, content, out)
	case literalNodeTypes[typ]:
		return lw.lowerLeaf(fnID, ir.ExprKindLiteral, n, content, out)
	}

	// Not an expression-bearing node itself: recurse into children,
	// emitting one Expression per immediate child statement so the block
	// builder can reference each top-level statement's Expression ID.
	var last string
	for i := 0; i < int(n.ChildCount()); i++ {
		if id := lw.walk(fnID, n.Child(i), content, out); id != "" {
			last = id
		}
	}
	return last
}

func (lw *Lowerer) emit(fnID string, kind ir.ExpressionKind, n *sitter.Node, content []byte, childIDs []string, calleeName string, out *[]ir.Expression) string {
	span := parser.SpanOf(n)
	id := ir.ExpressionID(fnID, kind, span)
	text := parser.TextOf(n, content)
	if len(text) > 240 {
		text = text[:240]
	}
	*out = append(*out, ir.Expression{
		ID:             id,
		Kind:           kind,
		FunctionNodeID: fnID,
		Span:           span,
		Text:           text,
		CalleeName:     calleeName,
		ChildIDs:       childIDs,
	})
	return id
}

func (lw *Lowerer) lowerLeaf(fnID string, kind ir.ExpressionKind, n *sitter.Node, content []byte, out *[]ir.Expression) string {
	return lw.emit(fnID, kind, n, content, nil, "", out)
}

func (lw *Lowerer) lowerSimple(fnID string, kind ir.ExpressionKind, n *sitter.Node, content []byte, out *[]ir.Expression) string {
	var childIDs []string
	for i := 0; i < int(n.ChildCount()); i++ {
		if id := lw.walk(fnID, n.Child(i), content, out); id != "" {
			childIDs = append(childIDs, id)
		}
	}
	return lw.emit(fnID, kind, n, content, childIDs, "", out)
}

func (lw *Lowerer) lowerWrapping(fnID string, kind ir.ExpressionKind, n *sitter.Node, content []byte, out *[]ir.Expression) string {
	return lw.lowerSimple(fnID, kind, n, content, out)
}

func (lw *Lowerer) lowerBinary(fnID string, n *sitter.Node, content []byte, out *[]ir.Expression) string {
	return lw.lowerSimple(fnID, ir.ExprKindBinaryOp, n, content, out)
}

func (lw *Lowerer) lowerUnary(fnID string, n *sitter.Node, content []byte, out *[]ir.Expression) string {
	return lw.lowerSimple(fnID, ir.ExprKindUnaryOp, n, content, out)
}

func (lw *Lowerer) lowerCondition(fnID string, n *sitter.Node, content []byte, out *[]ir.Expression) string {
	var childIDs []string
	cond := n.ChildByFieldName("condition")
	if cond != nil {
		if id := lw.walk(fnID, cond, content, out); id != "" {
			childIDs = append(childIDs, id)
		}
	}
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		lw.walk(fnID, cons, content, out)
	}
	if alt := n.ChildByFieldName("alternative"); alt != nil {
		lw.walk(fnID, alt, content, out)
	}
	return lw.emit(fnID, ir.ExprKindCondition, n, content, childIDs, "", out)
}

func (lw *Lowerer) lowerReturn(fnID string, n *sitter.Node, content []byte, out *[]ir.Expression) string {
	var childIDs []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "return" {
			continue
		}
		if id := lw.walk(fnID, c, content, out); id != "" {
			childIDs = append(childIDs, id)
		}
	}
	return lw.emit(fnID, ir.ExprKindReturn, n, content, childIDs, "", out)
}

func (lw *Lowerer) lowerAssign(fnID string, n *sitter.Node, content []byte, out *[]ir.Expression) string {
	var childIDs []string
	if left := n.ChildByFieldName("left"); left != nil {
		if id := lw.walk(fnID, left, content, out); id != "" {
			childIDs = append(childIDs, id)
		}
	}
	if right := n.ChildByFieldName("right"); right != nil {
		if id := lw.walk(fnID, right, content, out); id != "" {
			childIDs = append(childIDs, id)
		}
	}
	if len(childIDs) == 0 {
		for i := 0; i < int(n.ChildCount()); i++ {
			if id := lw.walk(fnID, n.Child(i), content, out); id != "" {
				childIDs = append(childIDs, id)
			}
		}
	}
	return lw.emit(fnID, ir.ExprKindAssign, n, content, childIDs, "", out)
}

// lowerCall is the one shape constant propagation depends on: every argument expression is lowered and tracked
// in ChildIDs, literal arguments included, so a hardcoded secret or SQL
// string passed straight to a sink is still visible to the taint executor.
func (lw *Lowerer) lowerCall(fnID string, n *sitter.Node, content []byte, out *[]ir.Expression) string {
	calleeName := ""
	fnNode := n.ChildByFieldName("function")
	if fnNode == nil {
		fnNode = n.ChildByFieldName("callee")
	}
	if fnNode != nil {
		calleeName = strings.TrimSpace(parser.TextOf(fnNode, content))
		lw.walk(fnID, fnNode, content, out)
	}

	var childIDs []string
	args := n.ChildByFieldName("arguments")
	if args == nil {
		args = n.ChildByFieldName("argument_list")
	}
	if args != nil {
		for i := 0; i < int(args.ChildCount()); i++ {
			c := args.Child(i)
			switch c.Type() {
			case "(", ")", ",":
				continue
			}
			if id := lw.walk(fnID, c, content, out); id != "" {
				childIDs = append(childIDs, id)
			} else {
				// Unrecognized argument shape: still emit a leaf expression
				// so the argument position is not silently dropped.
				childIDs = append(childIDs, lw.emit(fnID, ir.ExprKindUnknown, c, content, nil, "", out))
			}
		}
	}

	return lw.emit(fnID, ir.ExprKindCall, n, content, childIDs, calleeName, out)
}
