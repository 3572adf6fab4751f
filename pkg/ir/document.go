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

// Package ir defines the layered intermediate representation produced by
// the analysis pipeline: structural nodes and edges, control- and
// data-flow layers, occurrences, enrichment results, and the taint/PDG
// layers built on top of them. Everything downstream of the parser
// frontend (pkg/structural through pkg/workspace) reads and writes this
// shared model rather than its own ad hoc types.
//
// Ownership is staged: pkg/structural creates Nodes and Edges and never
// mutates them after the document leaves C2; pkg/semantic appends Types,
// Signatures, CFG and DFG layers; pkg/occurrence appends Occurrences;
// pkg/typeenrich only ever mutates Node.Attrs and TypeEntity.Confidence;
// pkg/analyzer appends PDG and TaintFinding layers. No stage deletes
// entries another stage produced.
package ir

import (
	"sort"
)

// IRDocument is the root container for one analyzed snapshot of a repo.
// All slices are owned by the document; callers must go through
// AssignLocalSeq/EnforceTotalOrdering rather than sorting fields ad hoc.
type IRDocument struct {
	SchemaVersion string `json:"schema_version"`
	RepoID        string `json:"repo_id"`
	SnapshotID    string `json:"snapshot_id"`
	Meta          Attrs  `json:"meta,omitempty"`

	Nodes    []Node    `json:"nodes"`
	Edges    []Edge    `json:"edges"`
	Packages []Package `json:"packages,omitempty"`

	Types      []TypeEntity      `json:"types,omitempty"`
	Signatures []SignatureEntity `json:"signatures,omitempty"`

	CFGBlocks       []CFGBlock       `json:"cfg_blocks,omitempty"`
	CFGEdges        []CFGEdge        `json:"cfg_edges,omitempty"`
	DominatorTrees  []*DominatorTree `json:"dominator_trees,omitempty"`
	Expressions     []Expression     `json:"expressions,omitempty"`
	DFG             DFGSnapshot      `json:"dfg"`
	Interprocedural []InterproceduralEdge `json:"interprocedural_edges,omitempty"`

	Occurrences    []Occurrence    `json:"occurrences,omitempty"`
	UnifiedSymbols []UnifiedSymbol `json:"unified_symbols,omitempty"`

	TemplateSlots []TemplateSlot `json:"template_slots,omitempty"`

	PDGNodes      []PDGNode      `json:"pdg_nodes,omitempty"`
	PDGEdges      []PDGEdge      `json:"pdg_edges,omitempty"`
	TaintFindings []TaintFinding `json:"taint_findings,omitempty"`

	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	seq int64
}

// NewIRDocument constructs an empty document for a repo/snapshot pair.
func NewIRDocument(schemaVersion, repoID, snapshotID string) *IRDocument {
	return &IRDocument{
		SchemaVersion: schemaVersion,
		RepoID:        repoID,
		SnapshotID:    snapshotID,
		Meta:          Attrs{},
	}
}

// NextLocalSeq hands out the next monotonically increasing sequence
// number for this document, used by every append-time stage to stamp
// LocalSeq on the entity it is about to add. Sequence numbers record
// generation order; they are not re-derived from sort order.
func (d *IRDocument) NextLocalSeq() int64 {
	d.seq++
	return d.seq
}

// AssignLocalSeq backfills LocalSeq for any entity left at the zero
// value, in the order it currently appears in its owning slice. Stages
// that build entities in bulk (e.g. a generator emitting an entire
// file's nodes before any NextLocalSeq call) may call this once instead
// of threading the counter through every constructor.
func (d *IRDocument) AssignLocalSeq() {
	for i := range d.Nodes {
		if d.Nodes[i].LocalSeq == 0 {
			d.Nodes[i].LocalSeq = d.NextLocalSeq()
		}
	}
	for i := range d.Edges {
		if d.Edges[i].LocalSeq == 0 {
			d.Edges[i].LocalSeq = d.NextLocalSeq()
		}
	}
	for i := range d.Expressions {
		if d.Expressions[i].LocalSeq == 0 {
			d.Expressions[i].LocalSeq = d.NextLocalSeq()
		}
	}
	for i := range d.CFGBlocks {
		if d.CFGBlocks[i].LocalSeq == 0 {
			d.CFGBlocks[i].LocalSeq = d.NextLocalSeq()
		}
	}
	for i := range d.CFGEdges {
		if d.CFGEdges[i].LocalSeq == 0 {
			d.CFGEdges[i].LocalSeq = d.NextLocalSeq()
		}
	}
	for i := range d.Occurrences {
		if d.Occurrences[i].LocalSeq == 0 {
			d.Occurrences[i].LocalSeq = d.NextLocalSeq()
		}
	}
	for i := range d.PDGNodes {
		if d.PDGNodes[i].LocalSeq == 0 {
			d.PDGNodes[i].LocalSeq = d.NextLocalSeq()
		}
	}
	for i := range d.PDGEdges {
		if d.PDGEdges[i].LocalSeq == 0 {
			d.PDGEdges[i].LocalSeq = d.NextLocalSeq()
		}
	}
	for i := range d.TaintFindings {
		if d.TaintFindings[i].LocalSeq == 0 {
			d.TaintFindings[i].LocalSeq = d.NextLocalSeq()
		}
	}
}

// EnforceTotalOrdering sorts every ordered layer by its documented sort
// key, breaking ties on LocalSeq so that two runs over byte-identical
// input produce byte-identical JSON. This must run after AssignLocalSeq
// and before the document is serialized or indexed.
func (d *IRDocument) EnforceTotalOrdering() {
	sort.SliceStable(d.Nodes, func(i, j int) bool {
		if d.Nodes[i].FilePath != d.Nodes[j].FilePath {
			return d.Nodes[i].FilePath < d.Nodes[j].FilePath
		}
		if d.Nodes[i].Kind != d.Nodes[j].Kind {
			return d.Nodes[i].Kind < d.Nodes[j].Kind
		}
		if d.Nodes[i].Span.StartLine != d.Nodes[j].Span.StartLine {
			return d.Nodes[i].Span.StartLine < d.Nodes[j].Span.StartLine
		}
		if d.Nodes[i].Span.EndLine != d.Nodes[j].Span.EndLine {
			return d.Nodes[i].Span.EndLine < d.Nodes[j].Span.EndLine
		}
		return d.Nodes[i].LocalSeq < d.Nodes[j].LocalSeq
	})
	sort.SliceStable(d.Edges, func(i, j int) bool {
		if d.Edges[i].SourceID != d.Edges[j].SourceID {
			return d.Edges[i].SourceID < d.Edges[j].SourceID
		}
		if d.Edges[i].TargetID != d.Edges[j].TargetID {
			return d.Edges[i].TargetID < d.Edges[j].TargetID
		}
		if d.Edges[i].Kind != d.Edges[j].Kind {
			return d.Edges[i].Kind < d.Edges[j].Kind
		}
		return d.Edges[i].LocalSeq < d.Edges[j].LocalSeq
	})
	sort.SliceStable(d.Expressions, func(i, j int) bool {
		if d.Expressions[i].FunctionNodeID != d.Expressions[j].FunctionNodeID {
			return d.Expressions[i].FunctionNodeID < d.Expressions[j].FunctionNodeID
		}
		if d.Expressions[i].Span.StartLine != d.Expressions[j].Span.StartLine {
			return d.Expressions[i].Span.StartLine < d.Expressions[j].Span.StartLine
		}
		return d.Expressions[i].LocalSeq < d.Expressions[j].LocalSeq
	})
	sort.SliceStable(d.CFGBlocks, func(i, j int) bool {
		if d.CFGBlocks[i].FunctionNodeID != d.CFGBlocks[j].FunctionNodeID {
			return d.CFGBlocks[i].FunctionNodeID < d.CFGBlocks[j].FunctionNodeID
		}
		return d.CFGBlocks[i].LocalSeq < d.CFGBlocks[j].LocalSeq
	})
	sort.SliceStable(d.CFGEdges, func(i, j int) bool {
		if d.CFGEdges[i].FromID != d.CFGEdges[j].FromID {
			return d.CFGEdges[i].FromID < d.CFGEdges[j].FromID
		}
		return d.CFGEdges[i].LocalSeq < d.CFGEdges[j].LocalSeq
	})
	sort.SliceStable(d.Occurrences, func(i, j int) bool {
		if d.Occurrences[i].FilePath != d.Occurrences[j].FilePath {
			return d.Occurrences[i].FilePath < d.Occurrences[j].FilePath
		}
		if d.Occurrences[i].Span.StartLine != d.Occurrences[j].Span.StartLine {
			return d.Occurrences[i].Span.StartLine < d.Occurrences[j].Span.StartLine
		}
		return d.Occurrences[i].LocalSeq < d.Occurrences[j].LocalSeq
	})
	sort.SliceStable(d.TaintFindings, func(i, j int) bool {
		if d.TaintFindings[i].FunctionNodeID != d.TaintFindings[j].FunctionNodeID {
			return d.TaintFindings[i].FunctionNodeID < d.TaintFindings[j].FunctionNodeID
		}
		return d.TaintFindings[i].LocalSeq < d.TaintFindings[j].LocalSeq
	})
	sort.SliceStable(d.PDGNodes, func(i, j int) bool {
		if d.PDGNodes[i].FunctionNodeID != d.PDGNodes[j].FunctionNodeID {
			return d.PDGNodes[i].FunctionNodeID < d.PDGNodes[j].FunctionNodeID
		}
		return d.PDGNodes[i].LocalSeq < d.PDGNodes[j].LocalSeq
	})
	sort.SliceStable(d.PDGEdges, func(i, j int) bool {
		return d.PDGEdges[i].LocalSeq < d.PDGEdges[j].LocalSeq
	})
}

// NodeByID performs a linear scan for the node with the given ID. Used
// only in low-frequency paths (tests, small documents); pkg/query builds
// a real map-backed index for hot lookups over large documents.
func (d *IRDocument) NodeByID(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// DominatorTreeFor performs a linear scan for the dominator tree built
// for functionNodeID. Same low-frequency caveat as NodeByID.
func (d *IRDocument) DominatorTreeFor(functionNodeID string) (*DominatorTree, bool) {
	for _, tree := range d.DominatorTrees {
		if tree != nil && tree.FunctionNodeID == functionNodeID {
			return tree, true
		}
	}
	return nil, false
}
