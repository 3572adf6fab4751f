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

package parser

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/cie/pkg/ir"
)

// Language identifies one of the grammars the frontend can parse. It is
// the same string vocabulary ir.Node.Language uses, so generators can
// compare the two directly.
type Language string

const (
	LanguageGo         Language = "go"
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageTypeScript Language = "typescript"
	LanguageJava       Language = "java"
	LanguageProtobuf   Language = "protobuf"
)

// AstTree wraps a parsed tree-sitter tree together with the source bytes
// it was parsed from, since span-to-text slicing always needs both.
type AstTree struct {
	Tree     *sitter.Tree
	Root     *sitter.Node
	Content  []byte
	Language Language
	// HasErrors reports whether tree-sitter's error-recovery grammar had
	// to synthesize ERROR nodes anywhere in the tree.
	HasErrors bool
}

// Frontend parses source files into AstTrees via pooled, per-language
// tree-sitter parsers. Parsers are not safe for concurrent use, so one
// pool per language lets concurrent generator workers each borrow their
// own instance instead of contending on a shared one.
type Frontend struct {
	pools map[Language]*sync.Pool
	once  sync.Once
}

// NewFrontend constructs a Frontend. Construction is cheap; grammar
// parsers are created lazily on first use per language.
func NewFrontend() *Frontend {
	return &Frontend{}
}

func (f *Frontend) initPools() {
	f.once.Do(func() {
		f.pools = map[Language]*sync.Pool{
			LanguageGo: {New: func() any {
				p := sitter.NewParser()
				p.SetLanguage(golang.GetLanguage())
				return p
			}},
			LanguagePython: {New: func() any {
				p := sitter.NewParser()
				p.SetLanguage(python.GetLanguage())
				return p
			}},
			LanguageJavaScript: {New: func() any {
				p := sitter.NewParser()
				p.SetLanguage(javascript.GetLanguage())
				return p
			}},
			LanguageTypeScript: {New: func() any {
				p := sitter.NewParser()
				p.SetLanguage(typescript.GetLanguage())
				return p
			}},
			LanguageJava: {New: func() any {
				p := sitter.NewParser()
				p.SetLanguage(java.GetLanguage())
				return p
			}},
		}
	})
}

// Supports reports whether the frontend owns a tree-sitter grammar for
// language. Protobuf is deliberately absent: no tree-sitter grammar is
// linked in for it, so .proto files are handled by the regex-based
// SimplifiedFrontend exclusively.
func (f *Frontend) Supports(lang Language) bool {
	f.initPools()
	_, ok := f.pools[lang]
	return ok
}

// Parse parses content as the given language and returns the resulting
// tree plus any recoverable parse diagnostics (tree-sitter's error-
// recovery grammar never fails outright; syntax errors surface as ERROR
// nodes, which this collects into diagnostics rather than an error
// return).
func (f *Frontend) Parse(ctx context.Context, lang Language, content []byte, filePath string) (*AstTree, []ir.Diagnostic, error) {
	f.initPools()
	pool, ok := f.pools[lang]
	if !ok {
		return nil, nil, fmt.Errorf("parser: no tree-sitter grammar registered for language %q", lang)
	}
	p := pool.Get().(*sitter.Parser)
	defer pool.Put(p)

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, nil, fmt.Errorf("parser: parse %s content: %w", lang, err)
	}
	root := tree.RootNode()
	ast := &AstTree{
		Tree:      tree,
		Root:      root,
		Content:   content,
		Language:  lang,
		HasErrors: root.HasError(),
	}
	var diags []ir.Diagnostic
	if ast.HasErrors {
		collectErrorDiagnostics(root, filePath, &diags)
	}
	return ast, diags, nil
}

func collectErrorDiagnostics(n *sitter.Node, filePath string, out *[]ir.Diagnostic) {
	if n.IsError() || n.IsMissing() {
		span := SpanOf(n)
		*out = append(*out, ir.Diagnostic{
			Stage:    "parser",
			Severity: "warning",
			Message:  "syntax error recovered by grammar",
			FilePath: filePath,
			Span:     &span,
		})
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		collectErrorDiagnostics(n.Child(i), filePath, out)
	}
}

// Diff describes the edited byte range of an incremental reparse,
// mirroring tree-sitter's EditInput shape.
type Diff struct {
	StartByte  uint32
	OldEndByte uint32
	NewEndByte uint32
}

// ParseIncremental reparses newContent reusing oldTree's unaffected
// subtrees, informed by the edited byte range in diff. Callers are
// responsible for having applied the edit to produce newContent; this
// only performs the tree-sitter side of incremental reparsing.
func (f *Frontend) ParseIncremental(ctx context.Context, oldTree *AstTree, diff Diff, newContent []byte, filePath string) (*AstTree, []ir.Diagnostic, error) {
	if oldTree == nil {
		return nil, nil, fmt.Errorf("parser: ParseIncremental requires a previous AstTree")
	}
	f.initPools()
	pool, ok := f.pools[oldTree.Language]
	if !ok {
		return nil, nil, fmt.Errorf("parser: no tree-sitter grammar registered for language %q", oldTree.Language)
	}

	oldTree.Tree.Edit(sitter.EditInput{
		StartIndex:  diff.StartByte,
		OldEndIndex: diff.OldEndByte,
		NewEndIndex: diff.NewEndByte,
	})

	p := pool.Get().(*sitter.Parser)
	defer pool.Put(p)

	tree, err := p.ParseCtx(ctx, oldTree.Tree, newContent)
	if err != nil {
		return nil, nil, fmt.Errorf("parser: incremental reparse %s content: %w", oldTree.Language, err)
	}
	root := tree.RootNode()
	ast := &AstTree{
		Tree:      tree,
		Root:      root,
		Content:   newContent,
		Language:  oldTree.Language,
		HasErrors: root.HasError(),
	}
	var diags []ir.Diagnostic
	if ast.HasErrors {
		collectErrorDiagnostics(root, filePath, &diags)
	}
	return ast, diags, nil
}

// SpanOf converts a tree-sitter node's point range into an ir.Span.
// tree-sitter rows are 0-based; ir.Span lines are 1-based.
func SpanOf(n *sitter.Node) ir.Span {
	start := n.StartPoint()
	end := n.EndPoint()
	return ir.Span{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column),
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column),
	}
}

// TextOf returns the verbatim source slice a node spans.
func TextOf(n *sitter.Node, content []byte) string {
	return string(content[n.StartByte():n.EndByte()])
}
