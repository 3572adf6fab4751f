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

import (
	"context"
	"testing"

	"github.com/kraklabs/cie/pkg/ir"
)

func TestRun_LocalStepsResolveEligibleNodes(t *testing.T) {
	doc := ir.NewIRDocument("1", "repo", "snap")
	doc.Nodes = append(doc.Nodes,
		*namedFunc("__len__"),
		*namedFunc("is_ready"),
	)

	report, err := NewEnricher().Run(context.Background(), []*ir.IRDocument{doc}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Eligible != 2 {
		t.Fatalf("expected 2 eligible nodes, got %d", report.Eligible)
	}
	if report.BySource["convention"] != 2 {
		t.Fatalf("expected both nodes resolved by convention, got %+v", report.BySource)
	}
	if len(doc.Types) != 2 {
		t.Fatalf("expected 2 TypeEntity records appended, got %d", len(doc.Types))
	}

	n := &doc.Nodes[0]
	if src, ok := n.Attrs.String("type_source"); !ok || src != "convention" {
		t.Fatalf("expected node attrs to carry type_source=convention, got %q ok=%v", src, ok)
	}
}

func TestRun_ExcludesPrivateAndSyntheticNodes(t *testing.T) {
	doc := ir.NewIRDocument("1", "repo", "snap")
	private := namedFunc("_internal")
	synthetic := namedFunc("public_name")
	synthetic.FilePath = "<synthetic>"

	doc.Nodes = append(doc.Nodes, *private, *synthetic)

	report, err := NewEnricher().Run(context.Background(), []*ir.IRDocument{doc}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Eligible != 0 {
		t.Fatalf("expected 0 eligible nodes, got %d", report.Eligible)
	}
}

type stubLSPClient struct {
	typeExpr string
}

func (s stubLSPClient) Hover(ctx context.Context, filePath string, line, col int) (string, bool, error) {
	if s.typeExpr == "" {
		return "", false, nil
	}
	return s.typeExpr, true, nil
}

func TestRun_LSPFallbackForUnresolvedNode(t *testing.T) {
	doc := ir.NewIRDocument("1", "repo", "snap")
	// A name that matches none of the six local steps.
	doc.Nodes = append(doc.Nodes, *namedFunc("compute_total"))

	report, err := NewEnricher().Run(context.Background(), []*ir.IRDocument{doc}, Options{
		LSPClient: stubLSPClient{typeExpr: "int"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.BySource["lsp"] != 1 {
		t.Fatalf("expected 1 node resolved via lsp, got %+v", report.BySource)
	}

	n := &doc.Nodes[0]
	if rt, ok := n.Attrs.String("resolved_type"); !ok || rt != "int" {
		t.Fatalf("expected resolved_type=int from lsp fallback, got %q ok=%v", rt, ok)
	}
}

func TestRun_UnresolvedWhenLSPDeclines(t *testing.T) {
	doc := ir.NewIRDocument("1", "repo", "snap")
	doc.Nodes = append(doc.Nodes, *namedFunc("compute_total"))

	report, err := NewEnricher().Run(context.Background(), []*ir.IRDocument{doc}, Options{
		LSPClient: stubLSPClient{},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Unresolved != 1 {
		t.Fatalf("expected 1 unresolved node, got %d", report.Unresolved)
	}
}
