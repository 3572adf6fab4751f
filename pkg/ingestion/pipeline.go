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

package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/occurrence"
	"github.com/kraklabs/cie/pkg/parser"
	"github.com/kraklabs/cie/pkg/semantic"
	"github.com/kraklabs/cie/pkg/structural"
	"github.com/kraklabs/cie/pkg/typeenrich"
)

// readFileBytes loads one file's content for parsing.
func readFileBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Config configures one Pipeline run.
type Config struct {
	RepoID        string
	SchemaVersion string
	ExcludeGlobs  []string
	MaxFileSize   int64
	// Concurrency bounds how many files are parsed and structurally
	// lowered at once. A value <= 0 falls back to 8.
	Concurrency int
	// EnableEnrich runs the C5 type-enrichment pass over the finished
	// document. Disabled by default since it is the slowest stage and
	// the CLI's `status`/`query` paths don't need it re-run every time.
	EnableEnrich bool
	// ReadFile backs typeenrich.Options.ReadFile; when nil the enricher
	// falls back to the declaration span's own column.
	ReadFile func(filePath string) ([]byte, error)
}

// Pipeline drives one repository snapshot through structural generation
// (C2), semantic lowering (C3) and occurrence extraction (C4), then
// optionally type enrichment (C5), producing a single IRDocument. It
// orchestrates the already-built per-stage packages directly rather than
// reimplementing any of their analysis.
type Pipeline struct {
	config Config
	logger *slog.Logger
	loader *RepoLoader
	front  *parser.Frontend
}

// NewPipeline constructs a Pipeline. Callers must Close it once done to
// release any temporary clone directories RepoLoader created.
func NewPipeline(config Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 8
	}
	return &Pipeline{
		config: config,
		logger: logger,
		loader: NewRepoLoader(logger),
		front:  parser.NewFrontend(),
	}
}

// Close releases resources held by the pipeline's RepoLoader.
func (p *Pipeline) Close() error { return p.loader.Close() }

// Result summarizes one pipeline run for the CLI's index-command report.
type Result struct {
	Doc *ir.IRDocument

	FilesProcessed     int
	ParseErrors        int
	FunctionsLowered   int
	OccurrencesEmitted int
	SkipReasons        map[string]int
	Enrichment         *typeenrich.Report

	ParseDuration      time.Duration
	StructuralDuration time.Duration
	SemanticDuration   time.Duration
	EnrichDuration     time.Duration
	TotalDuration      time.Duration
}

// fileUnit carries one loaded file's parsed tree and structural result
// forward to the semantic stage, which needs the raw AST back to locate
// function bodies (structural's generators don't expose it themselves).
type fileUnit struct {
	info   FileInfo
	lang   parser.Language
	tree   *parser.AstTree
	result *structural.FileResult
}

// Run executes the full pipeline against source, producing doc.
func (p *Pipeline) Run(ctx context.Context, source RepoSource, snapshotID string) (*Result, error) {
	ingMetrics.init()
	start := time.Now()

	loaded, err := p.loader.LoadRepository(source, p.config.ExcludeGlobs, p.config.MaxFileSize)
	if err != nil {
		return nil, fmt.Errorf("load repository: %w", err)
	}

	doc := ir.NewIRDocument(p.config.SchemaVersion, p.config.RepoID, snapshotID)
	result := &Result{Doc: doc, SkipReasons: loaded.SkipReasons}

	units, err := p.parseAndLower(ctx, loaded.Files, doc, result)
	if err != nil {
		return nil, err
	}

	semanticStart := time.Now()
	p.runSemantic(units, doc, result)
	result.SemanticDuration = time.Since(semanticStart)
	ingMetrics.semanticDuration.Observe(result.SemanticDuration.Seconds())

	languageByFileNode := make(map[string]string, len(units))
	for _, u := range units {
		for _, n := range u.result.Nodes {
			if n.Kind == ir.NodeKindFile {
				languageByFileNode[n.ID] = string(u.lang)
			}
		}
	}
	doc.Edges = append(doc.Edges, structural.DetectCrossLanguage(doc, func(fileNodeID string) string {
		return languageByFileNode[fileNodeID]
	})...)

	p.emitOccurrences(units, doc, result)

	if p.config.EnableEnrich {
		enrichStart := time.Now()
		enricher := typeenrich.NewEnricher()
		report, err := enricher.Run(ctx, []*ir.IRDocument{doc}, typeenrich.Options{ReadFile: p.config.ReadFile})
		result.EnrichDuration = time.Since(enrichStart)
		ingMetrics.enrichDuration.Observe(result.EnrichDuration.Seconds())
		if err != nil {
			return result, fmt.Errorf("type enrichment: %w", err)
		}
		result.Enrichment = report
		ingMetrics.nodesEnriched.Add(float64(report.Eligible - report.Unresolved))
		ingMetrics.nodesUnresolved.Add(float64(report.Unresolved))
	}

	doc.AssignLocalSeq()
	doc.EnforceTotalOrdering()

	result.TotalDuration = time.Since(start)
	ingMetrics.totalDuration.Observe(result.TotalDuration.Seconds())
	p.logger.Info("pipeline.run.complete",
		"files", result.FilesProcessed,
		"parse_errors", result.ParseErrors,
		"functions_lowered", result.FunctionsLowered,
		"occurrences", result.OccurrencesEmitted,
		"total_duration", result.TotalDuration,
	)
	return result, nil
}

// fileOutcome is one worker's result for one file, parked in an indexed
// slot so the merge below runs in file order, not completion order.
// Merging in completion order would make LocalSeq assignment depend on
// goroutine scheduling and break run-to-run byte identity of the
// serialized document.
type fileOutcome struct {
	unit        *fileUnit
	diagnostics []ir.Diagnostic
	parseFailed bool
}

// parseAndLower runs C1 (parsing) and C2 (structural generation) for
// every loaded file with a bounded worker pool, then merges each file's
// result into doc sequentially in the order files was given.
func (p *Pipeline) parseAndLower(ctx context.Context, files []FileInfo, doc *ir.IRDocument, result *Result) ([]*fileUnit, error) {
	parseStart := time.Now()
	defer func() {
		result.ParseDuration = time.Since(parseStart)
		ingMetrics.parseDuration.Observe(result.ParseDuration.Seconds())
	}()

	jobs := make(chan int)
	outcomes := make([]*fileOutcome, len(files))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range jobs {
			info := files[idx]
			lang := parser.Language(info.Language)
			if !p.front.Supports(lang) {
				continue
			}
			content, err := readFileBytes(info.FullPath)
			if err != nil {
				p.logger.Warn("pipeline.parse.read_error", "path", info.Path, "err", err)
				continue
			}
			tree, diags, err := p.front.Parse(ctx, lang, content, info.Path)
			if err != nil {
				outcomes[idx] = &fileOutcome{
					parseFailed: true,
					diagnostics: []ir.Diagnostic{{
						Stage: "parse", Severity: "error",
						Message: err.Error(), FilePath: info.Path,
					}},
				}
				ingMetrics.parseErrors.Inc()
				continue
			}

			gen, err := structural.Dispatch(lang)
			if err != nil {
				continue
			}
			fr, err := gen.EmitStructuralIR(tree, structural.FileInput{
				RepoID:   p.config.RepoID,
				Path:     info.Path,
				Content:  content,
				Language: lang,
			}, doc)
			if err != nil {
				outcomes[idx] = &fileOutcome{
					diagnostics: []ir.Diagnostic{{
						Stage: "structural", Severity: "error",
						Message: err.Error(), FilePath: info.Path,
					}},
				}
				continue
			}
			fr.Diagnostics = append(fr.Diagnostics, diags...)
			outcomes[idx] = &fileOutcome{
				unit: &fileUnit{info: info, lang: lang, tree: tree, result: fr},
			}
			ingMetrics.filesParsed.Inc()
		}
	}

	for i := 0; i < p.config.Concurrency; i++ {
		wg.Add(1)
		go worker()
	}
	go func() {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	wg.Wait()

	units := make([]*fileUnit, 0, len(files))
	for _, oc := range outcomes {
		if oc == nil {
			continue
		}
		doc.Diagnostics = append(doc.Diagnostics, oc.diagnostics...)
		if oc.parseFailed {
			result.ParseErrors++
		}
		if oc.unit == nil {
			continue
		}
		fr := oc.unit.result
		doc.Nodes = append(doc.Nodes, fr.Nodes...)
		doc.Edges = append(doc.Edges, fr.Edges...)
		doc.Expressions = append(doc.Expressions, fr.Expressions...)
		doc.Diagnostics = append(doc.Diagnostics, fr.Diagnostics...)
		result.FilesProcessed++
		units = append(units, oc.unit)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return units, nil
}

// functionASTTypes names the grammar node types that denote a function-
// or method-like declaration in each language, the same set pkg/structural
// itself dispatches on (go_generator.go, python_generator.go,
// typescript_generator.go) minus the bodiless TypeScript
// function_signature/method_signature, so the AST node located here is
// guaranteed to be the exact one the structural Node.Span was computed from.
var functionASTTypes = map[parser.Language]map[string]bool{
	parser.LanguageGo:         {"function_declaration": true, "method_declaration": true},
	parser.LanguagePython:     {"function_definition": true},
	parser.LanguageJavaScript: {"function_declaration": true, "method_definition": true, "arrow_function": true, "function_expression": true, "function": true},
	parser.LanguageTypeScript: {"function_declaration": true, "method_definition": true, "arrow_function": true, "function_expression": true, "function": true},
}

// findFunctionNodes walks tree and returns every AST node whose type
// matches one of wantTypes, keyed by its span so callers can match it
// back to the structural Node built from the same declaration.
func findFunctionNodes(root *sitter.Node, wantTypes map[string]bool) map[ir.Span]*sitter.Node {
	out := make(map[ir.Span]*sitter.Node)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if wantTypes[n.Type()] {
			out[parser.SpanOf(n)] = n
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out
}

// runSemantic drives C3 (CFG, DFG, signature, interprocedural lowering)
// for every function/method node produced during structural generation.
func (p *Pipeline) runSemantic(units []*fileUnit, doc *ir.IRDocument, result *Result) {
	lowerer := semantic.NewLowerer()
	cfgBuilder := semantic.NewCFGBuilder(lowerer)
	ssaBuilder := semantic.NewSSABuilder()
	resolver := semantic.NewTypeResolver()
	sigBuilder := semantic.NewSignatureBuilder(resolver)
	linker := semantic.NewInterproceduralLinker()

	funcs := make(map[string]*semantic.FuncCtx)
	var allCallEdges []ir.Edge

	for _, u := range units {
		wantTypes := functionASTTypes[u.lang]
		if wantTypes == nil {
			continue
		}
		bySpan := findFunctionNodes(u.tree.Root, wantTypes)

		for i := range doc.Nodes {
			n := &doc.Nodes[i]
			if n.FilePath != u.info.Path {
				continue
			}
			if n.Kind != ir.NodeKindFunction && n.Kind != ir.NodeKindMethod && n.Kind != ir.NodeKindArrowFunction {
				continue
			}
			astNode, ok := bySpan[n.Span]
			if !ok {
				continue
			}
			body := astNode.ChildByFieldName("body")
			if body == nil {
				body = astNode
			}

			cfgRes := cfgBuilder.Build(n, body, string(u.lang), u.tree.Content)
			ssaCtx, dfgEdges := ssaBuilder.Build(n, cfgRes.Blocks, cfgRes.Edges, cfgRes.Dominator, cfgRes.Expressions)
			sig := sigBuilder.Build(n, astNode, u.tree.Content, string(u.lang))

			doc.CFGBlocks = append(doc.CFGBlocks, cfgRes.Blocks...)
			doc.CFGEdges = append(doc.CFGEdges, cfgRes.Edges...)
			if cfgRes.Dominator != nil {
				doc.DominatorTrees = append(doc.DominatorTrees, cfgRes.Dominator)
			}
			doc.Expressions = append(doc.Expressions, cfgRes.Expressions...)
			doc.DFG.Contexts = append(doc.DFG.Contexts, ssaCtx)
			doc.DFG.Edges = append(doc.DFG.Edges, dfgEdges...)
			if sig != nil {
				doc.Signatures = append(doc.Signatures, *sig)
			}

			funcs[n.ID] = &semantic.FuncCtx{
				Node:        n,
				Expressions: cfgRes.Expressions,
				SSA:         ssaCtx,
				Signature:   sig,
			}
			result.FunctionsLowered++
			ingMetrics.functionsLowered.Inc()
		}
		for _, e := range u.result.Edges {
			if e.Kind == ir.EdgeKindCalls {
				allCallEdges = append(allCallEdges, e)
			}
		}
	}

	doc.Interprocedural = append(doc.Interprocedural, linker.Link(funcs, allCallEdges)...)
}

// emitOccurrences populates doc.Occurrences (C4): one Definition
// occurrence per structural Node eligible as a symbol, using the
// cross-language descriptor builder so the analyzer's symbol table
// (pkg/occurrence.Table) has something to index regardless of language.
// pkgName is approximated as the node's containing directory; a real
// package/module resolver is out of scope for this pass (see DESIGN.md).
func (p *Pipeline) emitOccurrences(units []*fileUnit, doc *ir.IRDocument, result *Result) {
	for _, u := range units {
		for _, n := range u.result.Nodes {
			if n.Kind == ir.NodeKindFile || n.Kind == ir.NodeKindImport {
				continue
			}
			if n.Name == "" || n.Span.IsZero() {
				continue
			}
			pkgName := filepath.ToSlash(filepath.Dir(n.FilePath))
			descriptor := occurrence.BuildDefault(n.Language, pkgName, n.Name, n.Kind)
			occ := ir.Occurrence{
				ID:         ir.EdgeID(ir.EdgeKindBinds, n.ID, string(descriptor), 0),
				Descriptor: descriptor,
				FilePath:   n.FilePath,
				Span:       n.Span,
				Role:       ir.SymbolRoleDefinition,
				NodeID:     n.ID,
				Language:   n.Language,
			}
			doc.Occurrences = append(doc.Occurrences, occ)
			result.OccurrencesEmitted++
			ingMetrics.occurrencesEmitted.Inc()
		}
	}
}
