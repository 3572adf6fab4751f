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

// docIndex builds the lookups every analysis pass in this package needs
// repeatedly, once per IRDocument, so PDG construction, taint propagation
// and slicing never re-scan the document's slices from scratch.
type docIndex struct {
	doc *ir.IRDocument

	exprByID     map[string]*ir.Expression
	blockOfExpr  map[string]string
	blocksByFn   map[string][]*ir.CFGBlock
	domTreeByFn  map[string]*ir.DominatorTree
	ssaByFn      map[string]*ir.SSAContext
	defEdgeBySSA map[string]*ir.DFGEdge
	useEdgesBySSA map[string][]*ir.DFGEdge
}

func newDocIndex(doc *ir.IRDocument) *docIndex {
	idx := &docIndex{
		doc:           doc,
		exprByID:      make(map[string]*ir.Expression, len(doc.Expressions)),
		blockOfExpr:   make(map[string]string),
		blocksByFn:    make(map[string][]*ir.CFGBlock),
		domTreeByFn:   make(map[string]*ir.DominatorTree),
		ssaByFn:       make(map[string]*ir.SSAContext),
		defEdgeBySSA:  make(map[string]*ir.DFGEdge),
		useEdgesBySSA: make(map[string][]*ir.DFGEdge),
	}
	for i := range doc.Expressions {
		e := &doc.Expressions[i]
		idx.exprByID[e.ID] = e
	}
	for i := range doc.CFGBlocks {
		b := &doc.CFGBlocks[i]
		idx.blocksByFn[b.FunctionNodeID] = append(idx.blocksByFn[b.FunctionNodeID], b)
		for _, exprID := range b.StatementExprIDs {
			idx.blockOfExpr[exprID] = b.ID
		}
	}
	for _, t := range doc.DominatorTrees {
		idx.domTreeByFn[t.FunctionNodeID] = t
	}
	for i := range doc.DFG.Contexts {
		c := &doc.DFG.Contexts[i]
		idx.ssaByFn[c.FunctionNodeID] = c
	}
	for i := range doc.DFG.Edges {
		e := &doc.DFG.Edges[i]
		switch e.Kind {
		case ir.DFGEdgeDef, ir.DFGEdgePhi:
			idx.defEdgeBySSA[e.SSAVersionID] = e
		case ir.DFGEdgeUse:
			idx.useEdgesBySSA[e.SSAVersionID] = append(idx.useEdgesBySSA[e.SSAVersionID], e)
		}
	}
	return idx
}

// blockIDOf resolves the CFGBlock that owns the top-level statement
// expression carrying exprID. Sub-expressions nested inside a statement
// resolve through their root the same way, since StatementExprIDs
// records one entry per top-level statement only; callers that need a
// nested expression's block should walk up to its statement root first.
func (idx *docIndex) blockIDOf(exprID string) (string, bool) {
	id, ok := idx.blockOfExpr[exprID]
	return id, ok
}
