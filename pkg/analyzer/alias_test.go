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

func TestAliasRegistry_UnionsIdentifierAssignment(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "s")
	fn := newTestFunction(doc, "handle")

	lhs := newTestExpr(doc, fn.ID, ir.ExprKindIdentifier, "b", 1)
	rhs := newTestExpr(doc, fn.ID, ir.ExprKindIdentifier, "a", 1)
	assign := newTestExpr(doc, fn.ID, ir.ExprKindAssign, "b = a", 1)
	assign.ChildIDs = []string{lhs.ID, rhs.ID}

	idx := newDocIndex(doc)
	reg := NewAliasRegistry()
	reg.Build(idx, fn)

	aliases := reg.AliasesOf("a")
	if len(aliases) != 1 || aliases[0] != "b" {
		t.Fatalf("expected a to alias b, got %+v", aliases)
	}
}

func TestAliasRegistry_EnrichAddsFlowThroughAlias(t *testing.T) {
	doc := ir.NewIRDocument("2.3", "r", "s")
	fn := newTestFunction(doc, "handle")

	source := newTestExpr(doc, fn.ID, ir.ExprKindIdentifier, "user_input", 1)
	sink := newTestCall(doc, fn.ID, "os.system", 3)
	linkDFG(doc, fn.ID, "direct_flow", source, sink)

	lhs := newTestExpr(doc, fn.ID, ir.ExprKindIdentifier, "cmd", 1)
	rhs := newTestExpr(doc, fn.ID, ir.ExprKindIdentifier, "user_input", 1)
	assign := newTestExpr(doc, fn.ID, ir.ExprKindAssign, "cmd = user_input", 1)
	assign.ChildIDs = []string{lhs.ID, rhs.ID}

	// A separate read of the alias "cmd" reaching the same sink through a
	// DFG chain the source's own SSA version never threads through.
	aliasRead := newTestExpr(doc, fn.ID, ir.ExprKindIdentifier, "cmd", 2)
	linkDFG(doc, fn.ID, "cmd_flow", aliasRead, sink)

	idx := newDocIndex(doc)
	pdgNodes, pdgEdges := NewPDGBuilder().Build(idx, fn)

	findings := NewTaintAnalyzer().Analyze(idx, fn, ir.ModeBasic, pdgNodes, pdgEdges)
	if len(findings) != 1 {
		t.Fatalf("expected exactly 1 direct finding before alias enrichment, got %d", len(findings))
	}

	reg := NewAliasRegistry()
	reg.Build(idx, fn)
	enriched := reg.Enrich(idx, fn, findings, pdgEdges)

	if len(enriched) != 2 {
		t.Fatalf("expected alias enrichment to add the cmd-aliased flow, got %d findings: %+v", len(enriched), enriched)
	}
	foundAliasFinding := false
	for _, f := range enriched {
		if f.SourceExprID == aliasRead.ID {
			foundAliasFinding = true
		}
	}
	if !foundAliasFinding {
		t.Fatalf("expected a finding sourced from the alias read of cmd")
	}
}
