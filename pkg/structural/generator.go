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

// Package structural turns parsed AstTrees into the structural layer of
// an IRDocument: File/Function/Method/Class/Import nodes and the
// Contains/Calls/Imports edges between them. It never looks at types,
// control flow, or data flow — those are the semantic enricher's job
// (pkg/semantic).
package structural

import (
	"fmt"

	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/parser"
)

// FileInput describes one source file to generate structural IR for.
type FileInput struct {
	RepoID   string
	Path     string
	Content  []byte
	Language parser.Language
}

// Generator emits the structural IR for one file's parsed tree.
// Implementations must be safe to call concurrently across distinct
// FileInputs: they return their entities in a FileResult and never
// append to doc themselves, so callers do the merging (see
// pkg/ingestion's orchestration, which merges per-file results
// sequentially in input order once the worker goroutines finish).
type Generator interface {
	EmitStructuralIR(tree *parser.AstTree, file FileInput, doc *ir.IRDocument) (*FileResult, error)
}

// FileResult is the set of entities one generator invocation produced,
// returned so the orchestrator can merge them into a shared IRDocument
// itself instead of requiring every Generator to know about
// concurrency.
type FileResult struct {
	Nodes       []ir.Node
	Edges       []ir.Edge
	Expressions []ir.Expression
	Diagnostics []ir.Diagnostic
}

// Dispatch selects the Generator for a file's language.
func Dispatch(lang parser.Language) (Generator, error) {
	switch lang {
	case parser.LanguageGo:
		return &GoGenerator{}, nil
	case parser.LanguagePython:
		return &PythonGenerator{}, nil
	case parser.LanguageTypeScript, parser.LanguageJavaScript:
		return &TypeScriptGenerator{}, nil
	case parser.LanguageProtobuf:
		return &ProtoGenerator{}, nil
	default:
		return nil, fmt.Errorf("structural: no generator registered for language %q", lang)
	}
}
