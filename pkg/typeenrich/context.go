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

package typeenrich

import "github.com/kraklabs/cie/pkg/ir"

// docContext indexes one IRDocument by the shapes the fallback chain
// needs to look up repeatedly, so no step re-scans the document's slices
// from scratch.
type docContext struct {
	doc *ir.IRDocument

	nodeByID   map[string]*ir.Node
	sigByNode  map[string]*ir.SignatureEntity
	typeByNode map[string]*ir.TypeEntity
	exprsByFn  map[string][]*ir.Expression
	exprByID   map[string]*ir.Expression
	stmtsByFn  map[string][]string
}

func newDocContext(doc *ir.IRDocument) *docContext {
	dc := &docContext{
		doc:        doc,
		nodeByID:   make(map[string]*ir.Node, len(doc.Nodes)),
		sigByNode:  make(map[string]*ir.SignatureEntity, len(doc.Signatures)),
		typeByNode: make(map[string]*ir.TypeEntity, len(doc.Types)),
		exprsByFn:  make(map[string][]*ir.Expression),
		exprByID:   make(map[string]*ir.Expression, len(doc.Expressions)),
		stmtsByFn:  make(map[string][]string),
	}
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		dc.nodeByID[n.ID] = n
	}
	for i := range doc.Signatures {
		s := &doc.Signatures[i]
		dc.sigByNode[s.NodeID] = s
	}
	for i := range doc.Types {
		t := &doc.Types[i]
		dc.typeByNode[t.NodeID] = t
	}
	for i := range doc.Expressions {
		e := &doc.Expressions[i]
		dc.exprsByFn[e.FunctionNodeID] = append(dc.exprsByFn[e.FunctionNodeID], e)
		dc.exprByID[e.ID] = e
	}
	for i := range doc.CFGBlocks {
		b := &doc.CFGBlocks[i]
		dc.stmtsByFn[b.FunctionNodeID] = append(dc.stmtsByFn[b.FunctionNodeID], b.StatementExprIDs...)
	}
	return dc
}

// returnTypeOf reports the best known return type for a function/method
// node, consulting the signature first (populated at parse time) and
// falling back to any TypeEntity the enricher itself has already
// recorded for it. Used by the callgraph propagation step.
func (dc *docContext) returnTypeOf(nodeID string) (string, bool) {
	if sig, ok := dc.sigByNode[nodeID]; ok && sig.ReturnType != "" {
		return sig.ReturnType, true
	}
	if t, ok := dc.typeByNode[nodeID]; ok && t.TypeExpr != "" {
		return t.TypeExpr, true
	}
	return "", false
}
