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

package cost

import (
	"strings"

	"github.com/kraklabs/cie/pkg/ir"
)

// unresolvedBound is the fallback bound text when no pattern in the
// extraction cascade matches.
const unresolvedBound = "?"

// extractBound walks the cascade: NameLoad, Literal, Call(range, ...)
// recursive on its first argument (or the "len(...)" shape when that
// argument is itself a len call), BinOp, and a "?" fallback for anything
// else. It returns the bound's symbolic text and how confidently it was
// resolved.
func extractBound(exprByID map[string]*ir.Expression, exprID string) (string, Basis) {
	expr, ok := exprByID[exprID]
	if !ok {
		return unresolvedBound, BasisHeuristic
	}
	return extractBoundExpr(exprByID, expr)
}

func extractBoundExpr(exprByID map[string]*ir.Expression, expr *ir.Expression) (string, Basis) {
	switch expr.Kind {
	case ir.ExprKindIdentifier:
		// A loop bounded by a plain variable is proven linear in that
		// variable; how large the variable is at runtime is not this
		// analysis's question.
		return expr.Text, BasisProven
	case ir.ExprKindLiteral:
		return expr.Text, BasisProven
	case ir.ExprKindCall:
		return extractCallBound(exprByID, expr)
	case ir.ExprKindBinaryOp:
		return binOpBoundText(expr), BasisLikely
	default:
		return unresolvedBound, BasisHeuristic
	}
}

func extractCallBound(exprByID map[string]*ir.Expression, expr *ir.Expression) (string, Basis) {
	callee := expr.CalleeName
	if callee == "range" {
		if len(expr.ChildIDs) == 0 {
			return unresolvedBound, BasisHeuristic
		}
		arg, ok := exprByID[expr.ChildIDs[0]]
		if !ok {
			return unresolvedBound, BasisHeuristic
		}
		if arg.Kind == ir.ExprKindCall && arg.CalleeName == "len" {
			inner, basis := extractLenBound(exprByID, arg)
			return "len(" + inner + ")", basis
		}
		return extractBoundExpr(exprByID, arg)
	}
	if callee == "len" {
		return extractLenBound(exprByID, expr)
	}
	return unresolvedBound, BasisHeuristic
}

func extractLenBound(exprByID map[string]*ir.Expression, lenCall *ir.Expression) (string, Basis) {
	if len(lenCall.ChildIDs) == 0 {
		return unresolvedBound, BasisHeuristic
	}
	arg, ok := exprByID[lenCall.ChildIDs[0]]
	if !ok {
		return unresolvedBound, BasisHeuristic
	}
	text, _ := extractBoundExpr(exprByID, arg)
	return text, BasisLikely
}

func binOpBoundText(expr *ir.Expression) string {
	if expr.Text != "" {
		return expr.Text
	}
	return unresolvedBound
}

// isHalvingBound detects the textual shape of a logarithmic bound: a
// division or right-shift by a constant factor, the only BinOp shape
// this analyzer treats as sub-linear.
func isHalvingBound(bound string) bool {
	b := strings.ReplaceAll(bound, " ", "")
	return strings.Contains(b, "/2") || strings.Contains(b, ">>1") || strings.Contains(b, "//2")
}
