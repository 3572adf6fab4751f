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

package taint

import (
	"strings"

	"github.com/kraklabs/cie/pkg/ir"
)

// Entity is the protocol compiled rules match against: a narrow read-only
// view over one expression, independent of the IR's own Expression type
// so the rule executor never needs to know about pkg/ir directly.
type Entity interface {
	ID() string
	Kind() string
	BaseType() (string, bool)
	Call() (string, bool)
	QualifiedCall() (string, bool)
	Read() (string, bool)
	Args() []string
	IsConstant(index int) bool
	IsStringLiteral(index int) bool
	Location() (line, col int)
	FilePath() string
	FunctionFQN() string
}

var kindMap = map[ir.ExpressionKind]string{
	ir.ExprKindCall:       "call",
	ir.ExprKindAttribute:  "read",
	ir.ExprKindIdentifier: "read",
	ir.ExprKindSubscript:  "subscript",
	ir.ExprKindAssign:     "assign",
	ir.ExprKindLiteral:    "literal",
	ir.ExprKindBinaryOp:   "binop",
	ir.ExprKindUnaryOp:    "unaryop",
	ir.ExprKindCollection: "collection",
	ir.ExprKindLambda:     "lambda",
}

// ExpressionEntity adapts an ir.Expression to the Entity protocol. It
// needs an expression index to resolve ChildIDs into argument text and a
// node index to resolve the owning function's file path and name, since
// Expression itself carries neither.
type ExpressionEntity struct {
	expr        *ir.Expression
	exprByID    map[string]*ir.Expression
	filePath    string
	functionFQN string
	baseType    string
	hasBaseType bool
}

// NewExpressionEntity builds the adapter for one expression. fn is the
// expression's owning function node, used only for FilePath/FunctionFQN/
// BaseType (the type enricher records a method's receiver type on the
// owning Class node's resolved_type attr, not on the call expression
// itself in this pipeline, so BaseType here resolves from the Method
// node's ParentID lookup the caller already did and passed in as
// receiverType).
func NewExpressionEntity(expr *ir.Expression, exprByID map[string]*ir.Expression, fn *ir.Node, receiverType string) *ExpressionEntity {
	e := &ExpressionEntity{expr: expr, exprByID: exprByID}
	if fn != nil {
		e.filePath = fn.FilePath
		e.functionFQN = fn.Name
	}
	if receiverType != "" {
		e.baseType = receiverType
		e.hasBaseType = true
	}
	return e
}

func (e *ExpressionEntity) ID() string { return e.expr.ID }

// Kind maps the expression's ir.ExpressionKind onto the coarser rule
// vocabulary (call/read/assign/literal/binop/...); anything not in
// kindMap reports "unknown" rather than panicking on an unrecognized
// shape.
func (e *ExpressionEntity) Kind() string {
	if k, ok := kindMap[e.expr.Kind]; ok {
		return k
	}
	return "unknown"
}

func (e *ExpressionEntity) BaseType() (string, bool) { return e.baseType, e.hasBaseType }

func (e *ExpressionEntity) Call() (string, bool) {
	if e.expr.Kind != ir.ExprKindCall || e.expr.CalleeName == "" {
		return "", false
	}
	return e.expr.CalleeName, true
}

// QualifiedCall composes base_type.method when both are known and the
// callee isn't already dotted, matching the source adapter's
// double-qualification guard.
func (e *ExpressionEntity) QualifiedCall() (string, bool) {
	call, ok := e.Call()
	if !ok {
		return "", false
	}
	if strings.Contains(call, ".") {
		return call, true
	}
	if e.hasBaseType && e.baseType != "" {
		return e.baseType + "." + call, true
	}
	return call, true
}

func (e *ExpressionEntity) Read() (string, bool) {
	if e.expr.Kind != ir.ExprKindAttribute {
		return "", false
	}
	if idx := strings.LastIndex(e.expr.Text, "."); idx >= 0 && idx+1 < len(e.expr.Text) {
		return e.expr.Text[idx+1:], true
	}
	return e.expr.Text, true
}

// Args returns the verbatim source text of each positional argument, in
// the order pkg/semantic's Lowerer recorded them in ChildIDs (the only
// argument-ordering signal this pipeline's lowering preserves; no
// separate keyword-argument channel exists yet).
func (e *ExpressionEntity) Args() []string {
	if e.expr.Kind != ir.ExprKindCall {
		return nil
	}
	args := make([]string, 0, len(e.expr.ChildIDs))
	for _, id := range e.expr.ChildIDs {
		if child, ok := e.exprByID[id]; ok {
			args = append(args, child.Text)
		} else {
			args = append(args, "")
		}
	}
	return args
}

func (e *ExpressionEntity) argExpr(index int) (*ir.Expression, bool) {
	if e.expr.Kind != ir.ExprKindCall || index < 0 || index >= len(e.expr.ChildIDs) {
		return nil, false
	}
	child, ok := e.exprByID[e.expr.ChildIDs[index]]
	return child, ok
}

func (e *ExpressionEntity) IsConstant(index int) bool {
	child, ok := e.argExpr(index)
	return ok && child.Kind == ir.ExprKindLiteral
}

func (e *ExpressionEntity) IsStringLiteral(index int) bool {
	child, ok := e.argExpr(index)
	if !ok || child.Kind != ir.ExprKindLiteral {
		return false
	}
	s := strings.TrimSpace(child.Text)
	return len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\''))
}

func (e *ExpressionEntity) Location() (int, int) {
	return e.expr.Span.StartLine, e.expr.Span.StartCol
}

func (e *ExpressionEntity) FilePath() string    { return e.filePath }
func (e *ExpressionEntity) FunctionFQN() string { return e.functionFQN }
