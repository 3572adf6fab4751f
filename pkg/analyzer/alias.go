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

// AliasRegistry is an optional may-alias registry: it groups variable
// names that a simple identifier-to-identifier assignment (b = a) proves
// refer to the same value, within one function. It does not attempt
// pointer- or heap-level must-alias reasoning; that needs type
// information this pipeline's IR does not carry precisely enough to
// trust, so the registry only ever widens findings (may-alias), never
// narrows them.
type AliasRegistry struct {
	parent map[string]string
}

// NewAliasRegistry constructs an empty registry.
func NewAliasRegistry() *AliasRegistry {
	return &AliasRegistry{parent: map[string]string{}}
}

func (a *AliasRegistry) find(name string) string {
	if _, ok := a.parent[name]; !ok {
		a.parent[name] = name
		return name
	}
	root := name
	for a.parent[root] != root {
		root = a.parent[root]
	}
	a.parent[name] = root
	return root
}

func (a *AliasRegistry) union(x, y string) {
	rx, ry := a.find(x), a.find(y)
	if rx != ry {
		a.parent[rx] = ry
	}
}

// Build scans fn's assignment expressions for the identifier = identifier
// shape and unions the two names into one alias class.
func (a *AliasRegistry) Build(idx *docIndex, fn *ir.Node) {
	for i := range idx.doc.Expressions {
		e := &idx.doc.Expressions[i]
		if e.FunctionNodeID != fn.ID || e.Kind != ir.ExprKindAssign {
			continue
		}
		var idents []string
		for _, childID := range e.ChildIDs {
			child, ok := idx.exprByID[childID]
			if !ok || child.Kind != ir.ExprKindIdentifier || child.Text == "" {
				continue
			}
			idents = append(idents, child.Text)
		}
		if len(idents) == 2 {
			a.union(idents[0], idents[1])
		}
	}
}

// AliasesOf returns the other names known to be in name's alias class,
// excluding name itself.
func (a *AliasRegistry) AliasesOf(name string) []string {
	root := a.find(name)
	var out []string
	for member := range a.parent {
		if member == name {
			continue
		}
		if a.find(member) == root {
			out = append(out, member)
		}
	}
	return out
}

// Enrich widens a set of taint findings to also report flows from any
// alias of an existing finding's source identifier that independently
// reaches the same sink in the PDG, when the taint analysis above did
// not already find that path under the source's own SSA name.
func (a *AliasRegistry) Enrich(idx *docIndex, fn *ir.Node, findings []ir.TaintFinding, pdgEdges []ir.PDGEdge) []ir.TaintFinding {
	if len(findings) == 0 {
		return findings
	}
	adj := pdgAdjacency(pdgEdges)
	seen := map[[2]string]bool{}
	for _, f := range findings {
		seen[[2]string{f.SourceExprID, f.SinkExprID}] = true
	}

	out := append([]ir.TaintFinding{}, findings...)
	for _, f := range findings {
		srcExpr, ok := idx.exprByID[f.SourceExprID]
		if !ok {
			continue
		}
		for _, aliasName := range a.AliasesOf(nameOf(srcExpr)) {
			for i := range idx.doc.Expressions {
				cand := &idx.doc.Expressions[i]
				if cand.FunctionNodeID != fn.ID || cand.Kind != ir.ExprKindIdentifier || cand.Text != aliasName {
					continue
				}
				key := [2]string{cand.ID, f.SinkExprID}
				if seen[key] {
					continue
				}
				path, ok := findPath(adj, exprPDGNodeID(cand.ID), exprPDGNodeID(f.SinkExprID))
				if !ok {
					continue
				}
				seen[key] = true
				out = append(out, ir.TaintFinding{
					ID:             ir.PDGEdgeID(ir.PDGEdgeData, cand.ID, f.SinkExprID),
					Mode:           f.Mode,
					SourceExprID:   cand.ID,
					SinkExprID:     f.SinkExprID,
					FunctionNodeID: fn.ID,
					PathPDGNodeIDs: path,
					Severity:       f.Severity,
					Sanitized:      f.Sanitized,
				})
			}
		}
	}
	return out
}
