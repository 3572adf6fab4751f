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

package analyzer

import (
	"testing"

	"github.com/kraklabs/cie/pkg/ir"
)

func TestGuardDetector_DetectsIdentifierInCondition(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "s")
	fn := newTestFunction(doc, "handle")

	identExpr := newTestExpr(doc, fn.ID, ir.ExprKindIdentifier, "is_admin", 2)
	condExpr := newTestExpr(doc, fn.ID, ir.ExprKindCondition, "is_admin", 2)
	condExpr.ChildIDs = []string{identExpr.ID}

	block := ir.CFGBlock{
		ID:               "blk:if",
		Kind:             ir.CFGBlockIf,
		FunctionNodeID:   fn.ID,
		StatementExprIDs: []string{condExpr.ID},
	}
	doc.CFGBlocks = append(doc.CFGBlocks, block)

	idx := newDocIndex(doc)
	guards := NewGuardDetector().Detect(idx, fn)

	if len(guards) != 1 || guards[0].Variable != "is_admin" || guards[0].GuardBlockID != block.ID {
		t.Fatalf("expected one guard on is_admin at block %q, got %+v", block.ID, guards)
	}
}

func TestGuardDetector_IsGuardProtected(t *testing.T) {
	tree := ir.NewDominatorTree("fn1")
	tree.Idom["entry"] = "entry"
	tree.Idom["guard_block"] = "entry"
	tree.Idom["sink_block"] = "guard_block"

	guards := []Guard{{GuardBlockID: "guard_block", Variable: "user_input"}}

	gd := NewGuardDetector()
	if !gd.IsGuardProtected(guards, tree, "sink_block", "user_input") {
		t.Fatalf("expected sink_block to be guard-protected for user_input")
	}
	if gd.IsGuardProtected(guards, tree, "sink_block", "other_var") {
		t.Fatalf("did not expect protection for a different variable")
	}
}

func TestGuardDetector_IgnoresNonConditionBlocks(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "s")
	fn := newTestFunction(doc, "handle")
	expr := newTestExpr(doc, fn.ID, ir.ExprKindAssign, "x = 1", 1)
	doc.CFGBlocks = append(doc.CFGBlocks, ir.CFGBlock{
		ID:               "blk:plain",
		Kind:             ir.CFGBlockPlain,
		FunctionNodeID:   fn.ID,
		StatementExprIDs: []string{expr.ID},
	})

	idx := newDocIndex(doc)
	guards := NewGuardDetector().Detect(idx, fn)
	if len(guards) != 0 {
		t.Fatalf("expected no guards from a plain block, got %+v", guards)
	}
}
