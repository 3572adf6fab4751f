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
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/kraklabs/cie/pkg/ir"
)

// Enricher runs the type-resolution fallback chain over one or more
// IRDocuments. It holds no state between Run calls; nothing here is
// shared across documents or across goroutines beyond what Run itself
// sets up, so one Enricher value is safe to reuse or to discard.
type Enricher struct{}

// NewEnricher constructs a stateless Enricher.
func NewEnricher() *Enricher { return &Enricher{} }

// Run applies the fallback chain to every public-API-candidate node
// across docs. Local steps (ir, convention, literal, builtin, callgraph,
// class) run synchronously in one bulk pass; nodes none of them resolve
// are then handed to the LSP step under a bounded concurrent pool.
func (en *Enricher) Run(ctx context.Context, docs []*ir.IRDocument, opts Options) (*Report, error) {
	report := newReport()
	client := opts.client()

	type pending struct {
		dc   *docContext
		node *ir.Node
	}
	var unresolved []pending

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		dc := newDocContext(doc)
		for i := range doc.Nodes {
			n := &doc.Nodes[i]
			if !n.IsPublicAPICandidate() {
				continue
			}
			report.Eligible++

			resolved := false
			for _, st := range localSteps {
				res, ok := st(dc, n)
				if !ok {
					continue
				}
				en.apply(doc, n, res)
				report.record(res.source)
				resolved = true
				break
			}
			if !resolved {
				unresolved = append(unresolved, pending{dc: dc, node: n})
			}
		}
	}

	if len(unresolved) == 0 {
		return report, nil
	}

	sem := semaphore.NewWeighted(opts.concurrency())
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	for _, p := range unresolved {
		p := p
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func() {
			defer sem.Release(1)
			defer wg.Done()

			line := p.node.Span.StartLine
			col := p.node.Span.StartCol
			if opts.ReadFile != nil {
				if src, err := opts.ReadFile(p.node.FilePath); err == nil {
					col = nameColumn(src, line, p.node.Name, col)
				}
			}

			typeExpr, ok, err := client.Hover(ctx, p.node.FilePath, line, col)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if !ok || typeExpr == "" {
				report.Unresolved++
				return
			}
			en.apply(p.dc.doc, p.node, stepResult{typeExpr: typeExpr, origin: ir.TypeOriginLSP, source: "lsp"})
			report.record("lsp")
		}()
	}
	wg.Wait()

	return report, firstErr
}

// apply records res both on the node's Attrs (for quick filtering) and as
// a durable TypeEntity on the owning document.
func (en *Enricher) apply(doc *ir.IRDocument, n *ir.Node, res stepResult) {
	if n.Attrs == nil {
		n.Attrs = ir.Attrs{}
	}
	n.Attrs.Set("type_source", ir.StringAttr(res.source))
	n.Attrs.Set("resolved_type", ir.StringAttr(res.typeExpr))

	doc.Types = append(doc.Types, ir.TypeEntity{
		NodeID:     n.ID,
		TypeExpr:   res.typeExpr,
		Origin:     res.origin,
		Confidence: confidenceFor(res.source),
		LocalSeq:   doc.NextLocalSeq(),
	})
}

// confidenceFor assigns a fixed confidence per source, reflecting how
// reliable each rung of the fallback chain is: a captured annotation is
// as good as it gets, a name-based heuristic much less so.
func confidenceFor(source string) float64 {
	switch source {
	case "ir":
		return 1.0
	case "lsp":
		return 0.9
	case "builtin":
		return 0.85
	case "callgraph":
		return 0.7
	case "literal":
		return 0.6
	case "convention":
		return 0.5
	case "class":
		return 0.4
	default:
		return 0.3
	}
}
