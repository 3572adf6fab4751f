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

package query

import (
	"sync"

	"github.com/kraklabs/cie/pkg/ir"
)

// Indexes is the full set of lazily built, map-backed lookups over one
// IRDocument. Each index is built at most once, guarded by its own
// sync.Once, so concurrent readers racing to trigger the same index
// only pay the build cost once and never observe a partially built map.
// The document itself is never mutated.
type Indexes struct {
	doc *ir.IRDocument

	nodeByIDOnce sync.Once
	nodeByID     map[string]*ir.Node

	edgesBySourceOnce sync.Once
	edgesBySource     map[string][]*ir.Edge

	edgesByTargetOnce sync.Once
	edgesByTarget     map[string][]*ir.Edge

	fileNodesOnce sync.Once
	fileNodes     map[string][]*ir.Node

	nodesByKindOnce sync.Once
	nodesByKind     map[ir.NodeKind][]*ir.Node

	cfgBlocksByKindOnce sync.Once
	cfgBlocksByKind     map[ir.CFGBlockKind][]*ir.CFGBlock

	expressionsByKindOnce sync.Once
	expressionsByKind     map[ir.ExpressionKind][]*ir.Expression

	exprByIDOnce sync.Once
	exprByID     map[string]*ir.Expression

	slotsByContextOnce sync.Once
	slotsByContext     map[ir.TemplateSlotKind][]*ir.TemplateSlot

	slotsByFileOnce sync.Once
	slotsByFile     map[string][]*ir.TemplateSlot

	slotsByIDOnce sync.Once
	slotsByID     map[string]*ir.TemplateSlot

	bindingsOnce      sync.Once
	bindingsBySlot    map[string][]*ir.Edge
	bindingsBySource  map[string][]*ir.Edge

	occurrenceOnce     sync.Once
	occBySymbol        map[ir.Descriptor][]*ir.Occurrence
	occByFile          map[string][]*ir.Occurrence
	occByRole          map[ir.SymbolRole][]*ir.Occurrence
}

// NewIndexes wraps a document. Nothing is built until first use.
func NewIndexes(doc *ir.IRDocument) *Indexes {
	return &Indexes{doc: doc}
}

// NodeByID returns the O(1)-average node lookup, building the backing
// map on first call.
func (idx *Indexes) NodeByID(id string) (*ir.Node, bool) {
	idx.nodeByIDOnce.Do(func() {
		m := make(map[string]*ir.Node, len(idx.doc.Nodes))
		for i := range idx.doc.Nodes {
			m[idx.doc.Nodes[i].ID] = &idx.doc.Nodes[i]
		}
		idx.nodeByID = m
	})
	n, ok := idx.nodeByID[id]
	return n, ok
}

// EdgesBySource returns every edge whose SourceID matches id.
func (idx *Indexes) EdgesBySource(id string) []*ir.Edge {
	idx.edgesBySourceOnce.Do(func() {
		m := make(map[string][]*ir.Edge)
		for i := range idx.doc.Edges {
			e := &idx.doc.Edges[i]
			m[e.SourceID] = append(m[e.SourceID], e)
		}
		idx.edgesBySource = m
	})
	return idx.edgesBySource[id]
}

// EdgesByTarget returns every edge whose TargetID matches id.
func (idx *Indexes) EdgesByTarget(id string) []*ir.Edge {
	idx.edgesByTargetOnce.Do(func() {
		m := make(map[string][]*ir.Edge)
		for i := range idx.doc.Edges {
			e := &idx.doc.Edges[i]
			m[e.TargetID] = append(m[e.TargetID], e)
		}
		idx.edgesByTarget = m
	})
	return idx.edgesByTarget[id]
}

// FileNodes returns every node declared in path.
func (idx *Indexes) FileNodes(path string) []*ir.Node {
	idx.fileNodesOnce.Do(func() {
		m := make(map[string][]*ir.Node)
		for i := range idx.doc.Nodes {
			n := &idx.doc.Nodes[i]
			m[n.FilePath] = append(m[n.FilePath], n)
		}
		idx.fileNodes = m
	})
	return idx.fileNodes[path]
}

// NodesByKind returns every node of the given kind.
func (idx *Indexes) NodesByKind(kind ir.NodeKind) []*ir.Node {
	idx.nodesByKindOnce.Do(func() {
		m := make(map[ir.NodeKind][]*ir.Node)
		for i := range idx.doc.Nodes {
			n := &idx.doc.Nodes[i]
			m[n.Kind] = append(m[n.Kind], n)
		}
		idx.nodesByKind = m
	})
	return idx.nodesByKind[kind]
}

// CFGBlocksByKind returns every CFG block of the given kind across all
// functions in the document.
func (idx *Indexes) CFGBlocksByKind(kind ir.CFGBlockKind) []*ir.CFGBlock {
	idx.cfgBlocksByKindOnce.Do(func() {
		m := make(map[ir.CFGBlockKind][]*ir.CFGBlock)
		for i := range idx.doc.CFGBlocks {
			b := &idx.doc.CFGBlocks[i]
			m[b.Kind] = append(m[b.Kind], b)
		}
		idx.cfgBlocksByKind = m
	})
	return idx.cfgBlocksByKind[kind]
}

// ExpressionsByKind returns every expression of the given kind.
func (idx *Indexes) ExpressionsByKind(kind ir.ExpressionKind) []*ir.Expression {
	idx.expressionsByKindOnce.Do(func() {
		m := make(map[ir.ExpressionKind][]*ir.Expression)
		for i := range idx.doc.Expressions {
			e := &idx.doc.Expressions[i]
			m[e.Kind] = append(m[e.Kind], e)
		}
		idx.expressionsByKind = m
	})
	return idx.expressionsByKind[kind]
}

// ExprByID returns the O(1)-average expression lookup.
func (idx *Indexes) ExprByID(id string) (*ir.Expression, bool) {
	idx.exprByIDOnce.Do(func() {
		m := make(map[string]*ir.Expression, len(idx.doc.Expressions))
		for i := range idx.doc.Expressions {
			m[idx.doc.Expressions[i].ID] = &idx.doc.Expressions[i]
		}
		idx.exprByID = m
	})
	e, ok := idx.exprByID[id]
	return e, ok
}

// SlotsByContext returns every template slot of the given substitution
// context kind.
func (idx *Indexes) SlotsByContext(kind ir.TemplateSlotKind) []*ir.TemplateSlot {
	idx.buildSlotIndexes()
	return idx.slotsByContext[kind]
}

// SlotsByFile returns every template slot declared in path.
func (idx *Indexes) SlotsByFile(path string) []*ir.TemplateSlot {
	idx.buildSlotIndexes()
	return idx.slotsByFile[path]
}

// SlotByID returns the O(1)-average template slot lookup.
func (idx *Indexes) SlotByID(id string) (*ir.TemplateSlot, bool) {
	idx.buildSlotIndexes()
	s, ok := idx.slotsByID[id]
	return s, ok
}

// slotFilePath resolves a TemplateSlot to the source file it lives in
// by walking ExpressionID -> Expression.FunctionNodeID -> Node.FilePath,
// since TemplateSlot itself carries no file_path field.
func (idx *Indexes) slotFilePath(s *ir.TemplateSlot, exprToFunc, funcToFile map[string]string) string {
	fn := exprToFunc[s.ExpressionID]
	return funcToFile[fn]
}

func (idx *Indexes) buildSlotIndexes() {
	idx.slotsByContextOnce.Do(func() {
		byContext := make(map[ir.TemplateSlotKind][]*ir.TemplateSlot)
		byFile := make(map[string][]*ir.TemplateSlot)
		byID := make(map[string]*ir.TemplateSlot, len(idx.doc.TemplateSlots))

		exprToFunc := make(map[string]string, len(idx.doc.Expressions))
		for i := range idx.doc.Expressions {
			exprToFunc[idx.doc.Expressions[i].ID] = idx.doc.Expressions[i].FunctionNodeID
		}
		funcToFile := make(map[string]string, len(idx.doc.Nodes))
		for i := range idx.doc.Nodes {
			funcToFile[idx.doc.Nodes[i].ID] = idx.doc.Nodes[i].FilePath
		}

		for i := range idx.doc.TemplateSlots {
			s := &idx.doc.TemplateSlots[i]
			byContext[s.Kind] = append(byContext[s.Kind], s)
			byID[s.ID] = s
			if path := idx.slotFilePath(s, exprToFunc, funcToFile); path != "" {
				byFile[path] = append(byFile[path], s)
			}
		}
		idx.slotsByContext = byContext
		idx.slotsByFile = byFile
		idx.slotsByID = byID
	})
}

// BindingsBySlot returns every Binds edge targeting the given slot id.
// A slot is always the target of a Binds edge (spec: "slot is target").
func (idx *Indexes) BindingsBySlot(slotID string) []*ir.Edge {
	idx.buildBindingsIndex()
	return idx.bindingsBySlot[slotID]
}

// BindingsBySource returns every Binds edge whose source is sourceID.
func (idx *Indexes) BindingsBySource(sourceID string) []*ir.Edge {
	idx.buildBindingsIndex()
	return idx.bindingsBySource[sourceID]
}

func (idx *Indexes) buildBindingsIndex() {
	idx.bindingsOnce.Do(func() {
		bySlot := make(map[string][]*ir.Edge)
		bySource := make(map[string][]*ir.Edge)
		for i := range idx.doc.Edges {
			e := &idx.doc.Edges[i]
			if e.Kind != ir.EdgeKindBinds {
				continue
			}
			bySlot[e.TargetID] = append(bySlot[e.TargetID], e)
			bySource[e.SourceID] = append(bySource[e.SourceID], e)
		}
		idx.bindingsBySlot = bySlot
		idx.bindingsBySource = bySource
	})
}

// OccurrencesBySymbol returns every occurrence of the given descriptor.
func (idx *Indexes) OccurrencesBySymbol(d ir.Descriptor) []*ir.Occurrence {
	idx.buildOccurrenceIndex()
	return idx.occBySymbol[d]
}

// OccurrencesByFile returns every occurrence recorded in path.
func (idx *Indexes) OccurrencesByFile(path string) []*ir.Occurrence {
	idx.buildOccurrenceIndex()
	return idx.occByFile[path]
}

// OccurrencesByRole returns every occurrence of the given symbol role.
func (idx *Indexes) OccurrencesByRole(role ir.SymbolRole) []*ir.Occurrence {
	idx.buildOccurrenceIndex()
	return idx.occByRole[role]
}

func (idx *Indexes) buildOccurrenceIndex() {
	idx.occurrenceOnce.Do(func() {
		bySymbol := make(map[ir.Descriptor][]*ir.Occurrence)
		byFile := make(map[string][]*ir.Occurrence)
		byRole := make(map[ir.SymbolRole][]*ir.Occurrence)
		for i := range idx.doc.Occurrences {
			o := &idx.doc.Occurrences[i]
			bySymbol[o.Descriptor] = append(bySymbol[o.Descriptor], o)
			byFile[o.FilePath] = append(byFile[o.FilePath], o)
			byRole[o.Role] = append(byRole[o.Role], o)
		}
		idx.occBySymbol = bySymbol
		idx.occByFile = byFile
		idx.occByRole = byRole
	})
}
