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

package ir

// ExpressionKind enumerates the lowered expression shapes tracked for
// data-flow and taint purposes. This is not a full AST: only the shapes
// that matter to DFG/PDG/taint propagation are represented.
type ExpressionKind string

const (
	ExprKindLiteral    ExpressionKind = "Literal"
	ExprKindIdentifier ExpressionKind = "Identifier"
	ExprKindCall       ExpressionKind = "Call"
	ExprKindBinaryOp   ExpressionKind = "BinaryOp"
	ExprKindUnaryOp    ExpressionKind = "UnaryOp"
	ExprKindAttribute  ExpressionKind = "Attribute"
	ExprKindSubscript  ExpressionKind = "Subscript"
	ExprKindAssign     ExpressionKind = "Assign"
	ExprKindReturn     ExpressionKind = "Return"
	ExprKindCondition  ExpressionKind = "Condition"
	ExprKindFString    ExpressionKind = "FormatString"
	ExprKindCollection ExpressionKind = "Collection"
	ExprKindLambda     ExpressionKind = "Lambda"
	ExprKindAwait      ExpressionKind = "Await"
	ExprKindUnknown    ExpressionKind = "Unknown"
)

// Expression is one node of the lowered per-function expression forest,
// addressed by ID and referenced from CFGBlock.StatementExprIDs and from
// DFG/PDG edges. Expressions form a tree via ChildIDs, rooted at one
// expression per statement.
type Expression struct {
	ID             string         `json:"id"`
	Kind           ExpressionKind `json:"kind"`
	FunctionNodeID string         `json:"function_node_id"`
	Span           Span           `json:"span"`
	// Text is the verbatim source slice, truncated by the generator to a
	// reasonable ceiling for call expressions with large literal bodies.
	Text string `json:"text,omitempty"`
	// CalleeName is populated for ExprKindCall: the syntactic callee text
	// (e.g. "os.system", "db.execute"), not yet resolved to a node ID.
	CalleeName string `json:"callee_name,omitempty"`
	// ResolvedCalleeID holds the node ID of a callee matched to a Calls
	// edge target. No stage in this module sets it; it is empty unless a
	// caller fills it in.
	ResolvedCalleeID string   `json:"resolved_callee_id,omitempty"`
	ChildIDs         []string `json:"child_ids,omitempty"`
	Attrs            Attrs    `json:"attrs,omitempty"`
	LocalSeq         int64    `json:"local_seq"`
}

// IsSink reports whether the expression's attrs mark it as a known taint
// sink category, set by the taint rule executor (pkg/taint) after rule
// matching, not by the structural generator.
func (e *Expression) IsSink() bool {
	return e.Attrs.BoolOr("taint_sink", false)
}

// IsSource reports the symmetric source marker.
func (e *Expression) IsSource() bool {
	return e.Attrs.BoolOr("taint_source", false)
}
