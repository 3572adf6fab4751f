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
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/parser"
)

// cfgSyntax names the grammar node types a CFGBuilder needs to recognize
// control structures in one language. Python/JS/TS share field names
// closely enough that one table, rather than one builder per language,
// covers all of them; Go's for_statement does not expose a "condition"
// field for the common three-clause form, so its branch falls back to a
// best-effort child scan.
type cfgSyntax struct {
	ifTypes    map[string]bool
	forTypes   map[string]bool
	whileTypes map[string]bool
	tryTypes   map[string]bool
}

var cfgSyntaxByLang = map[string]cfgSyntax{
	"go": {
		ifTypes:  map[string]bool{"if_statement": true},
		forTypes: map[string]bool{"for_statement": true},
	},
	"python": {
		ifTypes:    map[string]bool{"if_statement": true},
		forTypes:   map[string]bool{"for_statement": true},
		whileTypes: map[string]bool{"while_statement": true},
		tryTypes:   map[string]bool{"try_statement": true},
	},
	"javascript": {
		ifTypes:    map[string]bool{"if_statement": true},
		forTypes:   map[string]bool{"for_statement": true, "for_in_statement": true, "for_of_statement": true},
		whileTypes: map[string]bool{"while_statement": true, "do_statement": true},
		tryTypes:   map[string]bool{"try_statement": true},
	},
}

func init() {
	cfgSyntaxByLang["typescript"] = cfgSyntaxByLang["javascript"]
}

// CFGBuilder constructs per-function control-flow graphs (blocks, typed
// edges, a dominator tree, and the lowered expressions attached to each
// block) directly from the language-specific AST.
type CFGBuilder struct {
	lowerer *Lowerer
}

// NewCFGBuilder constructs a builder that lowers statements with lw as it
// walks the control-flow structure, so each CFGBlock.StatementExprIDs
// reflects exactly the statements physically inside that block.
func NewCFGBuilder(lw *Lowerer) *CFGBuilder { return &CFGBuilder{lowerer: lw} }

// Result is everything one function's CFG construction produces.
type Result struct {
	Blocks      []ir.CFGBlock
	Edges       []ir.CFGEdge
	Expressions []ir.Expression
	Dominator   *ir.DominatorTree
}

type cfgBuildCtx struct {
	fnID      string
	language  string
	syntax    cfgSyntax
	content   []byte
	lowerer   *Lowerer
	blocks    []ir.CFGBlock
	blockIdx  map[string]int
	edges     []ir.CFGEdge
	exprs     []ir.Expression
	index     int
}

// Build walks body and returns the CFGBlocks/CFGEdges/Expressions
// produced plus the function's dominator tree. Callers append the result
// to the shared IRDocument themselves (mirrors pkg/structural's
// FileResult pattern so CFGBuilder stays safe to call concurrently
// across functions).
func (b *CFGBuilder) Build(fn *ir.Node, body *sitter.Node, language string, content []byte) *Result {
	syntax := cfgSyntaxByLang[language]
	ctx := &cfgBuildCtx{
		fnID:     fn.ID,
		language: language,
		syntax:   syntax,
		content:  content,
		lowerer:  b.lowerer,
		blockIdx: map[string]int{},
	}

	entry := ctx.newBlock(ir.CFGBlockEntry, fn.Span)
	exit := ctx.newBlock(ir.CFGBlockExit, fn.Span)

	last := entry
	if body != nil {
		last = ctx.walkStatements(body, entry)
	}
	ctx.addEdge(last, exit, ir.CFGEdgeUnconditional)

	tree := computeDominatorTree(fn.ID, ctx.blocks, ctx.edges, entry)
	return &Result{Blocks: ctx.blocks, Edges: ctx.edges, Expressions: ctx.exprs, Dominator: tree}
}

func (c *cfgBuildCtx) newBlock(kind ir.CFGBlockKind, span ir.Span) string {
	id := ir.CFGBlockID(c.fnID, kind, c.index)
	c.index++
	s := span
	c.blockIdx[id] = len(c.blocks)
	c.blocks = append(c.blocks, ir.CFGBlock{ID: id, Kind: kind, FunctionNodeID: c.fnID, Span: &s})
	return id
}

func (c *cfgBuildCtx) addEdge(from, to string, label ir.CFGEdgeLabel) {
	if from == "" || to == "" {
		return
	}
	c.edges = append(c.edges, ir.CFGEdge{ID: ir.CFGEdgeID(from, to, label), FromID: from, ToID: to, Label: label})
}

// addStatement lowers n into c.exprs and records the resulting expression
// IDs against block's StatementExprIDs.
func (c *cfgBuildCtx) addStatement(block string, n *sitter.Node) {
	if c.lowerer == nil {
		return
	}
	id := c.lowerer.walk(c.fnID, n, c.content, &c.exprs)
	if id == "" {
		return
	}
	idx, ok := c.blockIdx[block]
	if !ok {
		return
	}
	c.blocks[idx].StatementExprIDs = append(c.blocks[idx].StatementExprIDs, id)
}

// walkStatements threads a sequence of sibling statements through "current"
// (the block control enters with) and returns the block execution falls
// out into afterward.
func (c *cfgBuildCtx) walkStatements(block *sitter.Node, current string) string {
	if block == nil {
		return current
	}
	for i := 0; i < int(block.ChildCount()); i++ {
		child := block.Child(i)
		current = c.walkStatement(child, current)
	}
	return current
}

func (c *cfgBuildCtx) walkStatement(n *sitter.Node, current string) string {
	if n == nil {
		return current
	}
	typ := n.Type()

	if c.syntax.ifTypes[typ] {
		return c.walkIf(n, current)
	}
	if c.syntax.forTypes[typ] {
		return c.walkLoop(n, current)
	}
	if c.syntax.whileTypes[typ] {
		return c.walkLoop(n, current)
	}
	if c.syntax.tryTypes[typ] {
		return c.walkTry(n, current)
	}
	if typ == "block" || typ == "statement_block" {
		return c.walkStatements(n, current)
	}
	switch typ {
	case "{", "}", "comment", "else", "elif_clause":
		return current
	}
	c.addStatement(current, n)
	return current
}

func (c *cfgBuildCtx) walkIf(n *sitter.Node, current string) string {
	ifBlock := c.newBlock(ir.CFGBlockIf, parser.SpanOf(n))
	c.addEdge(current, ifBlock, ir.CFGEdgeUnconditional)
	if cond := n.ChildByFieldName("condition"); cond != nil {
		c.addStatement(ifBlock, cond)
	}

	thenBlock := c.newBlock(ir.CFGBlockPlain, parser.SpanOf(n))
	c.addEdge(ifBlock, thenBlock, ir.CFGEdgeTrue)
	thenEnd := thenBlock
	if cons := n.ChildByFieldName("consequence"); cons != nil {
		thenEnd = c.walkStatements(cons, thenBlock)
	}

	merge := c.newBlock(ir.CFGBlockPlain, parser.SpanOf(n))
	c.addEdge(thenEnd, merge, ir.CFGEdgeUnconditional)

	if alt := n.ChildByFieldName("alternative"); alt != nil {
		elseBlock := c.newBlock(ir.CFGBlockElse, parser.SpanOf(alt))
		c.addEdge(ifBlock, elseBlock, ir.CFGEdgeFalse)
		var elseEnd string
		if c.syntax.ifTypes[alt.Type()] {
			elseEnd = c.walkStatement(alt, elseBlock)
		} else {
			elseEnd = c.walkStatements(alt, elseBlock)
		}
		c.addEdge(elseEnd, merge, ir.CFGEdgeUnconditional)
	} else {
		c.addEdge(ifBlock, merge, ir.CFGEdgeFalse)
	}

	return merge
}

func (c *cfgBuildCtx) walkLoop(n *sitter.Node, current string) string {
	header := c.newBlock(ir.CFGBlockLoopHead, parser.SpanOf(n))
	c.addEdge(current, header, ir.CFGEdgeUnconditional)
	if cond := n.ChildByFieldName("condition"); cond != nil {
		c.addStatement(header, cond)
	}

	bodyBlock := c.newBlock(ir.CFGBlockPlain, parser.SpanOf(n))
	c.addEdge(header, bodyBlock, ir.CFGEdgeTrue)
	bodyEnd := bodyBlock
	if body := n.ChildByFieldName("body"); body != nil {
		bodyEnd = c.walkStatements(body, bodyBlock)
	}
	c.addEdge(bodyEnd, header, ir.CFGEdgeBack)

	after := c.newBlock(ir.CFGBlockPlain, parser.SpanOf(n))
	c.addEdge(header, after, ir.CFGEdgeFalse)
	return after
}

func (c *cfgBuildCtx) walkTry(n *sitter.Node, current string) string {
	tryBlock := c.newBlock(ir.CFGBlockTry, parser.SpanOf(n))
	c.addEdge(current, tryBlock, ir.CFGEdgeUnconditional)
	tryEnd := tryBlock
	if body := n.ChildByFieldName("body"); body != nil {
		tryEnd = c.walkStatements(body, tryBlock)
	}

	merge := c.newBlock(ir.CFGBlockPlain, parser.SpanOf(n))
	c.addEdge(tryEnd, merge, ir.CFGEdgeUnconditional)

	for i := 0; i < int(n.ChildCount()); i++ {
		handler := n.Child(i)
		if handler.Type() != "except_clause" && handler.Type() != "catch_clause" {
			continue
		}
		exceptBlock := c.newBlock(ir.CFGBlockExcept, parser.SpanOf(handler))
		c.addEdge(tryBlock, exceptBlock, ir.CFGEdgeException)
		exceptEnd := c.walkStatements(handler, exceptBlock)
		c.addEdge(exceptEnd, merge, ir.CFGEdgeUnconditional)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		fin := n.Child(i)
		if fin.Type() != "finally_clause" {
			continue
		}
		finallyBlock := c.newBlock(ir.CFGBlockFinally, parser.SpanOf(fin))
		c.addEdge(merge, finallyBlock, ir.CFGEdgeUnconditional)
		finallyEnd := c.walkStatements(fin, finallyBlock)
		return finallyEnd
	}

	return merge
}

// computeDominatorTree runs the iterative fixed-point dominance algorithm
// (Cooper, Harvey & Kennedy, "A Simple, Fast Dominance Algorithm") over
// the blocks/edges produced for one function. It converges to the same
// immediate-dominator assignment as the classical Lengauer-Tarjan tree
// algorithm in asymptotically worse but practically negligible time for
// the block counts a single function ever produces, and is considerably
// easier to get right without a test run to check it against.
func computeDominatorTree(fnID string, blocks []ir.CFGBlock, edges []ir.CFGEdge, entry string) *ir.DominatorTree {
	tree := ir.NewDominatorTree(fnID)
	if entry == "" {
		return tree
	}

	preds := map[string][]string{}
	for _, e := range edges {
		preds[e.ToID] = append(preds[e.ToID], e.FromID)
	}

	order := reversePostorder(blocks, edges, entry)
	postIndex := map[string]int{}
	for i, id := range order {
		postIndex[id] = len(order) - 1 - i
	}

	idom := map[string]string{entry: entry}
	changed := true
	for changed {
		changed = false
		for _, b := range order {
			if b == entry {
				continue
			}
			var newIdom string
			for _, p := range preds[b] {
				if idom[p] == "" {
					continue
				}
				if newIdom == "" {
					newIdom = p
					continue
				}
				newIdom = intersect(newIdom, p, idom, postIndex)
			}
			if newIdom != "" && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}
	tree.Idom = idom
	return tree
}

func intersect(a, b string, idom map[string]string, postIndex map[string]int) string {
	for a != b {
		for postIndex[a] < postIndex[b] {
			a = idom[a]
		}
		for postIndex[b] < postIndex[a] {
			b = idom[b]
		}
	}
	return a
}

func reversePostorder(blocks []ir.CFGBlock, edges []ir.CFGEdge, entry string) []string {
	succs := map[string][]string{}
	for _, e := range edges {
		succs[e.FromID] = append(succs[e.FromID], e.ToID)
	}
	visited := map[string]bool{}
	var post []string
	var dfs func(id string)
	dfs = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, s := range succs[id] {
			dfs(s)
		}
		post = append(post, id)
	}
	dfs(entry)
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}
