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

import "github.com/kraklabs/cie/pkg/ir"

// Guard records one conditional block whose condition expression
// references a variable, the unit path-sensitive taint checks against a
// sink's dominator chain.
type Guard struct {
	GuardBlockID string
	Variable     string
	ConditionID  string
}

// GuardDetector finds conditional guards protecting a variable along a
// function's control flow, using dominator-tree reachability to decide
// whether a guard covers every path to a sink: a variable is protected
// at a block iff some detected guard on it sits in a block dominating
// that block.
type GuardDetector struct{}

// NewGuardDetector constructs a stateless GuardDetector.
func NewGuardDetector() *GuardDetector { return &GuardDetector{} }

// DetectInDocument builds the lookup index for doc and calls Detect,
// for callers outside this package (pkg/constraint's path_sensitivity
// category) that only have the document and function, not an index.
func (g *GuardDetector) DetectInDocument(doc *ir.IRDocument, fn *ir.Node) []Guard {
	return g.Detect(newDocIndex(doc), fn)
}

// Detect scans every If/LoopHeader block of fn and returns one Guard per
// identifier its condition expression references.
func (g *GuardDetector) Detect(idx *docIndex, fn *ir.Node) []Guard {
	var guards []Guard
	for _, block := range idx.blocksByFn[fn.ID] {
		if block.Kind != ir.CFGBlockIf && block.Kind != ir.CFGBlockLoopHead {
			continue
		}
		if len(block.StatementExprIDs) == 0 {
			continue
		}
		condID := block.StatementExprIDs[0]
		cond, ok := idx.exprByID[condID]
		if !ok || cond.Kind != ir.ExprKindCondition {
			continue
		}
		for _, name := range identifiersIn(idx, cond) {
			guards = append(guards, Guard{GuardBlockID: block.ID, Variable: name, ConditionID: cond.ID})
		}
	}
	return guards
}

// identifiersIn walks an expression's child tree and returns the distinct
// variable names it references.
func identifiersIn(idx *docIndex, root *ir.Expression) []string {
	seen := map[string]bool{}
	var names []string
	var walk func(e *ir.Expression)
	walk = func(e *ir.Expression) {
		if e == nil {
			return
		}
		if e.Kind == ir.ExprKindIdentifier && e.Text != "" && !seen[e.Text] {
			seen[e.Text] = true
			names = append(names, e.Text)
		}
		for _, childID := range e.ChildIDs {
			walk(idx.exprByID[childID])
		}
	}
	walk(root)
	return names
}

// IsGuardProtected reports whether variable is guarded on every path
// reaching sinkBlockID: some guard in guards names variable and its
// block dominates the sink block.
func (g *GuardDetector) IsGuardProtected(guards []Guard, tree *ir.DominatorTree, sinkBlockID, variable string) bool {
	if tree == nil {
		return false
	}
	for _, guard := range guards {
		if guard.Variable != variable {
			continue
		}
		if tree.Dominates(guard.GuardBlockID, sinkBlockID) {
			return true
		}
	}
	return false
}
