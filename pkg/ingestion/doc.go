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

// Package ingestion drives one repository snapshot through the analysis
// pipeline and produces a single ir.IRDocument.
//
// # Pipeline Overview
//
// Run orchestrates the per-stage packages directly rather than
// reimplementing any of their analysis:
//
//  1. Discovery: RepoLoader walks a git clone or local path, honoring
//     exclude globs and a max file size, and classifies each file by
//     extension.
//  2. Parsing and structural generation: pkg/parser.Frontend parses each
//     file concurrently; pkg/structural.Dispatch selects the per-language
//     Generator that turns the parsed tree into File/Function/Method/Class
//     nodes and Contains/Calls/Imports edges. Workers park their results
//     in indexed slots; the merge into the shared document happens
//     afterwards in file order so output never depends on scheduling.
//  3. Semantic lowering: for every function/method node, the pipeline
//     relocates the declaration's AST node (structural generators don't
//     expose it outward) and runs pkg/semantic's CFG builder, SSA/DFG
//     builder, signature builder and interprocedural linker.
//  4. Occurrence extraction: one Definition ir.Occurrence per eligible
//     node, built through pkg/occurrence's cross-language descriptor
//     scheme so polyglot repos get a consistent symbol table.
//  5. Type enrichment (optional): pkg/typeenrich.Enricher.Run applies its
//     fallback chain (annotation, convention, literal, builtin, call
//     graph, class hierarchy, then LSP hover) to every public-API
//     candidate node still missing a resolved type.
//
// The finished document is deterministic: Run calls AssignLocalSeq then
// EnforceTotalOrdering before returning, so two runs over byte-identical
// input produce byte-identical output.
//
// # Supported languages
//
// Go, Python, TypeScript and JavaScript are parsed with tree-sitter
// grammars through pkg/parser. Protocol Buffers have a structural
// generator (pkg/structural.ProtoGenerator) but no tree-sitter grammar,
// so they never reach the semantic lowering stage.
//
// # Quick start
//
//	p := ingestion.NewPipeline(ingestion.Config{
//	    RepoID:        "my-repo",
//	    SchemaVersion: "1",
//	    ExcludeGlobs:  []string{"vendor/**", "node_modules/**"},
//	    MaxFileSize:   1024 * 1024,
//	    EnableEnrich:  true,
//	}, logger)
//	defer p.Close()
//
//	result, err := p.Run(ctx, ingestion.RepoSource{Type: "local_path", Value: "."}, "snapshot-1")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("indexed %d files, %d functions\n", result.FilesProcessed, result.FunctionsLowered)
//
// # Incremental updates
//
// RunIncremental diffs two git revisions with DeltaDetector, carries
// every layer entry of unchanged files over from the previous document
// (node and edge IDs are stable, so untouched files keep their
// identities), and re-runs the stages above only for the files the
// delta names. Deleted and renamed-away files have their entries
// dropped.
//
// # Metrics
//
// Prometheus counters and histograms for each stage (delta detection,
// parsing, structural generation, semantic lowering, enrichment) are
// registered once on first use and exported for monitoring production
// indexing runs.
package ingestion
