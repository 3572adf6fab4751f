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

package constraint

import (
	"strings"

	"github.com/kraklabs/cie/pkg/ir"
)

// Target is the node a constraint set is evaluated against. The source
// validator takes an untyped node and type-switches on it at each
// constraint; Go needs a static seam instead, so every field the
// dispatch table can ask about is exposed here rather than through
// reflection.
type Target interface {
	Kind() string
	Name() string
	TypeName() string
	ConstantValue() (string, bool)
	IsConstant() bool
	FromParameter() bool
	IsGlobal() bool
	Scope() string
	BlockID() string
}

// ExpressionTarget adapts an ir.Expression. blockID is supplied by the
// caller because Expression carries no back-reference to its owning CFG
// block; callers that already resolved one (the taint analyzer's PDG
// index, typically) pass it through so path_sensitivity can use it.
type ExpressionTarget struct {
	expr    *ir.Expression
	blockID string
}

func NewExpressionTarget(expr *ir.Expression, blockID string) *ExpressionTarget {
	return &ExpressionTarget{expr: expr, blockID: blockID}
}

func (t *ExpressionTarget) Kind() string { return string(t.expr.Kind) }

func (t *ExpressionTarget) Name() string {
	if t.expr.Kind == ir.ExprKindCall && t.expr.CalleeName != "" {
		return t.expr.CalleeName
	}
	return t.expr.Text
}

// TypeName reads the type the type enricher recorded on this
// expression's attrs, if any (resolved_type, falling back to the bare
// type attr some lowering paths set directly).
func (t *ExpressionTarget) TypeName() string {
	if v := t.expr.Attrs.StringOr("resolved_type", ""); v != "" {
		return v
	}
	return t.expr.Attrs.StringOr("type", "")
}

func (t *ExpressionTarget) ConstantValue() (string, bool) {
	if t.expr.Kind == ir.ExprKindLiteral {
		return t.expr.Text, true
	}
	if v := t.expr.Attrs.StringOr("value", ""); v != "" {
		return v, true
	}
	return "", false
}

func (t *ExpressionTarget) IsConstant() bool {
	if t.expr.Kind == ir.ExprKindLiteral {
		return true
	}
	if _, ok := t.ConstantValue(); ok {
		return true
	}
	return t.expr.Attrs.BoolOr("is_const", false)
}

func (t *ExpressionTarget) FromParameter() bool { return t.expr.Attrs.BoolOr("from_parameter", false) }
func (t *ExpressionTarget) IsGlobal() bool      { return t.expr.Attrs.BoolOr("is_global", false) }
func (t *ExpressionTarget) Scope() string       { return t.expr.Attrs.StringOr("scope", "") }
func (t *ExpressionTarget) BlockID() string     { return t.blockID }

// looksExternal applies the same heuristic the source validator uses
// for arg_source: external, checking the target's name against a small
// external-input vocabulary.
func looksExternal(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range []string{"request", "input", "user", "stdin"} {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}
