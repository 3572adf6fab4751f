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

import "github.com/kraklabs/cie/pkg/ir"

// SSABuilder places phi nodes at the iterated dominance frontier of each
// variable's defining blocks (Cytron, Ferrante, Rosen, Wegman & Zadeck)
// and renames uses to the SSA version reaching them, using the dominator
// tree a CFGBuilder already produced for the same function.
type SSABuilder struct{}

// NewSSABuilder constructs a stateless builder.
func NewSSABuilder() *SSABuilder { return &SSABuilder{} }

// Build computes the SSAContext and DFG edges for one function from its
// CFG blocks/edges, dominator tree, and lowered expressions.
func (s *SSABuilder) Build(fn *ir.Node, blocks []ir.CFGBlock, edges []ir.CFGEdge, tree *ir.DominatorTree, exprs []ir.Expression) (ir.SSAContext, []ir.DFGEdge) {
	ctx := ir.SSAContext{FunctionNodeID: fn.ID}
	if tree == nil || len(blocks) == 0 {
		return ctx, nil
	}

	exprByID := make(map[string]*ir.Expression, len(exprs))
	for i := range exprs {
		exprByID[exprs[i].ID] = &exprs[i]
	}
	defs, uses := classifyStatements(blocks, exprByID)

	preds, succs := adjacency(edges)
	domFrontier := dominanceFrontiers(blocks, preds, tree)
	children := dominatorChildren(blocks, tree)

	entry := entryBlock(blocks)

	phiBlocks := placePhis(defs, domFrontier)

	var versions []ir.SSAVersion
	var dfgEdges []ir.DFGEdge
	versionCounter := map[string]int{}
	phiVersionAt := map[[2]string]string{} // (block, var) -> SSAVersion.ID for phis

	for varName, blockSet := range phiBlocks {
		for blockID := range blockSet {
			v := versionCounter[varName]
			versionCounter[varName] = v + 1
			id := ir.SSAVersionID(fn.ID, varName, v)
			versions = append(versions, ir.SSAVersion{
				ID: id, FunctionNodeID: fn.ID, VariableName: varName,
				Version: v, DefBlockID: blockID, IsPhi: true,
			})
			phiVersionAt[[2]string{blockID, varName}] = id
		}
	}

	// Rename: DFS over the dominator tree, tracking the current reaching
	// SSA version of each variable on a stack-like "current" map that gets
	// restored on the way back up (classical SSA renaming).
	current := map[string]string{}
	var renameBlock func(blockID string)
	renameBlock = func(blockID string) {
		saved := map[string]string{}
		for k, v := range current {
			saved[k] = v
		}

		for key, id := range phiVersionAt {
			if key[0] == blockID {
				current[key[1]] = id
			}
		}

		for _, exprID := range blockStatementOrder(blocks, blockID) {
			// Uses are resolved against the version reaching this statement
			// before any def it contains takes effect, so a self-referencing
			// assignment like "x = x + 1" reads the prior version of x.
			for _, useVar := range uses[exprID] {
				if ssaID, ok := current[useVar]; ok {
					dfgEdges = append(dfgEdges, ir.DFGEdge{
						ID: ir.DFGEdgeID(ir.DFGEdgeUse, ssaID, exprID), Kind: ir.DFGEdgeUse,
						SSAVersionID: ssaID, ExpressionID: exprID,
					})
				}
			}

			if def, isDef := defs.lookup(exprID); isDef {
				v := versionCounter[def.varName]
				versionCounter[def.varName] = v + 1
				id := ir.SSAVersionID(fn.ID, def.varName, v)
				versions = append(versions, ir.SSAVersion{
					ID: id, FunctionNodeID: fn.ID, VariableName: def.varName,
					Version: v, DefExprID: exprID, DefBlockID: blockID,
				})
				dfgEdges = append(dfgEdges, ir.DFGEdge{
					ID: ir.DFGEdgeID(ir.DFGEdgeDef, id, exprID), Kind: ir.DFGEdgeDef,
					SSAVersionID: id, ExpressionID: exprID,
				})
				current[def.varName] = id
			}
		}

		for _, succ := range succs[blockID] {
			for i := range versions {
				if versions[i].DefBlockID == succ && versions[i].IsPhi {
					// Record this predecessor's reaching definition as a phi
					// operand once, keyed by variable name.
					for varName, ssaID := range current {
						if versions[i].VariableName == varName {
							versions[i].PhiOperandIDs = appendUnique(versions[i].PhiOperandIDs, ssaID)
						}
					}
				}
			}
		}

		for _, child := range children[blockID] {
			renameBlock(child)
		}

		current = saved
	}

	if entry != "" {
		renameBlock(entry)
	}

	ctx.Versions = versions
	return ctx, dfgEdges
}

type varDef struct {
	varName string
	blockID string
	exprID  string
}

type defIndex struct {
	byExpr map[string]varDef
}

func (d defIndex) lookup(exprID string) (varDef, bool) {
	v, ok := d.byExpr[exprID]
	return v, ok
}

// classifyStatements scans every lowered expression and determines, for
// each Assign expression, the variable it defines, and for each
// Identifier expression appearing outside the left-hand side of an
// assignment, the variable it uses.
func classifyStatements(blocks []ir.CFGBlock, exprByID map[string]*ir.Expression) (defIndex, map[string][]string) {
	blockOfExpr := map[string]string{}
	for _, b := range blocks {
		for _, id := range b.StatementExprIDs {
			blockOfExpr[id] = b.ID
		}
	}

	defs := defIndex{byExpr: map[string]varDef{}}
	uses := map[string][]string{}

	for id, expr := range exprByID {
		blockID := blockOfExpr[id]
		if blockID == "" {
			continue
		}
		switch expr.Kind {
		case ir.ExprKindAssign:
			if len(expr.ChildIDs) == 0 {
				continue
			}
			lhs, ok := exprByID[expr.ChildIDs[0]]
			if !ok || lhs.Kind != ir.ExprKindIdentifier {
				continue
			}
			defs.byExpr[id] = varDef{varName: lhs.Text, blockID: blockID, exprID: id}
			for _, childID := range expr.ChildIDs[1:] {
				collectUses(childID, exprByID, uses, id)
			}
		case ir.ExprKindIdentifier:
			// Bare identifier statements (rare) count as a use of themselves.
			uses[id] = append(uses[id], expr.Text)
		default:
			collectUses(id, exprByID, uses, id)
		}
	}
	return defs, uses
}

func collectUses(exprID string, exprByID map[string]*ir.Expression, uses map[string][]string, statementID string) {
	expr, ok := exprByID[exprID]
	if !ok {
		return
	}
	if expr.Kind == ir.ExprKindIdentifier {
		uses[statementID] = append(uses[statementID], expr.Text)
	}
	for _, child := range expr.ChildIDs {
		collectUses(child, exprByID, uses, statementID)
	}
}

func blockStatementOrder(blocks []ir.CFGBlock, blockID string) []string {
	for _, b := range blocks {
		if b.ID == blockID {
			return b.StatementExprIDs
		}
	}
	return nil
}

func adjacency(edges []ir.CFGEdge) (preds, succs map[string][]string) {
	preds = map[string][]string{}
	succs = map[string][]string{}
	for _, e := range edges {
		preds[e.ToID] = append(preds[e.ToID], e.FromID)
		succs[e.FromID] = append(succs[e.FromID], e.ToID)
	}
	return preds, succs
}

func entryBlock(blocks []ir.CFGBlock) string {
	for _, b := range blocks {
		if b.Kind == ir.CFGBlockEntry {
			return b.ID
		}
	}
	return ""
}

// dominanceFrontiers computes DF(n) for every block using the standard
// predecessor-walk formulation: for each join block b with >=2 preds,
// walk each predecessor up its idom chain until reaching idom[b],
// marking every block visited along the way.
func dominanceFrontiers(blocks []ir.CFGBlock, preds map[string][]string, tree *ir.DominatorTree) map[string]map[string]bool {
	df := map[string]map[string]bool{}
	for _, b := range blocks {
		df[b.ID] = map[string]bool{}
	}
	for _, b := range blocks {
		ps := preds[b.ID]
		if len(ps) < 2 {
			continue
		}
		idomB := tree.Idom[b.ID]
		for _, p := range ps {
			runner := p
			for runner != "" && runner != idomB {
				if _, ok := df[runner]; !ok {
					df[runner] = map[string]bool{}
				}
				df[runner][b.ID] = true
				next := tree.Idom[runner]
				if next == runner {
					break
				}
				runner = next
			}
		}
	}
	return df
}

func dominatorChildren(blocks []ir.CFGBlock, tree *ir.DominatorTree) map[string][]string {
	children := map[string][]string{}
	for _, b := range blocks {
		parent, ok := tree.Idom[b.ID]
		if !ok || parent == b.ID {
			continue
		}
		children[parent] = append(children[parent], b.ID)
	}
	return children
}

// placePhis computes, for each variable, the set of blocks needing a phi
// via the iterated dominance frontier of its defining blocks.
func placePhis(defs defIndex, df map[string]map[string]bool) map[string]map[string]bool {
	defBlocksByVar := map[string]map[string]bool{}
	for _, d := range defs.byExpr {
		if defBlocksByVar[d.varName] == nil {
			defBlocksByVar[d.varName] = map[string]bool{}
		}
		defBlocksByVar[d.varName][d.blockID] = true
	}

	result := map[string]map[string]bool{}
	for varName, defBlocks := range defBlocksByVar {
		placed := map[string]bool{}
		worklist := make([]string, 0, len(defBlocks))
		for b := range defBlocks {
			worklist = append(worklist, b)
		}
		hasAlready := map[string]bool{}
		for len(worklist) > 0 {
			b := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for frontierBlock := range df[b] {
				if hasAlready[frontierBlock] {
					continue
				}
				hasAlready[frontierBlock] = true
				placed[frontierBlock] = true
				if !defBlocks[frontierBlock] {
					worklist = append(worklist, frontierBlock)
				}
			}
		}
		if len(placed) > 0 {
			result[varName] = placed
		}
	}
	return result
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
