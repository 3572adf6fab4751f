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

package structural

import (
	"strings"

	"github.com/kraklabs/cie/pkg/ir"
)

// ffiLibraries maps an FFI/bridging package's root module name to the
// foreign language it brings into scope. Detecting one of these in an
// Imports edge's unresolved target promotes it to an FFIImport edge.
var ffiLibraries = map[string]string{
	"jpype":   "java",
	"py4j":    "java",
	"jnius":   "java",
	"pyjnius": "java",
	"ctypes":  "c",
	"cffi":    "c",
	"pybind11":     "cpp",
	"boost.python": "cpp",
	"cppyy":        "cpp",
	"rustimport": "rust",
	"gopy":       "go",
}

// crossLangImportExactMatches and crossLangImportPrefixes map an import
// token, by exact match or by prefix, to the language it belongs to, for
// detecting imports that reach across a language boundary without going
// through an FFI bridge library (e.g. a TypeScript file importing a
// @types/ package or a Node built-in such as fs).
var crossLangImportExactMatches = map[string]string{
	"fs": "javascript", "path": "javascript", "http": "javascript",
	"https": "javascript", "crypto": "javascript", "util": "javascript",
}

var crossLangImportPrefixes = []struct {
	prefix string
	lang   string
}{
	{"@types/", "javascript"},
	{"kotlin.", "kotlin"},
	{"java.", "java"},
	{"javax.", "java"},
	{"org.apache.", "java"},
	{"com.google.", "java"},
}

// DetectCrossLanguage walks doc's Imports edges and appends
// CrossLangImport/FFIImport edges for any unresolved import target that
// matches a known foreign-language signature. It must run after every
// per-file generator has populated doc.Edges with Imports edges, and
// before EnforceTotalOrdering.
func DetectCrossLanguage(doc *ir.IRDocument, sourceLanguageOf func(fileNodeID string) string) []ir.Edge {
	var out []ir.Edge
	for _, e := range doc.Edges {
		if e.Kind != ir.EdgeKindImports || !e.IsExternal() {
			continue
		}
		sourceLang := sourceLanguageOf(e.SourceID)
		token := e.UnresolvedTarget

		if ffiLang, ok := detectFFILanguage(token); ok {
			out = append(out, ir.Edge{
				ID:               ir.EdgeID(ir.EdgeKindFFIImport, e.SourceID, token, 0),
				Kind:             ir.EdgeKindFFIImport,
				SourceID:         e.SourceID,
				UnresolvedTarget: token,
				Attrs: ir.Attrs{
					"source_language": ir.StringAttr(sourceLang),
					"target_language": ir.StringAttr(ffiLang),
				},
			})
			continue
		}

		if crossLang, ok := detectCrossLanguageImport(token); ok && crossLang != sourceLang {
			out = append(out, ir.Edge{
				ID:               ir.EdgeID(ir.EdgeKindCrossLangImport, e.SourceID, token, 0),
				Kind:             ir.EdgeKindCrossLangImport,
				SourceID:         e.SourceID,
				UnresolvedTarget: token,
				Attrs: ir.Attrs{
					"source_language": ir.StringAttr(sourceLang),
					"target_language": ir.StringAttr(crossLang),
				},
			})
		}
	}
	return out
}

func detectFFILanguage(importToken string) (string, bool) {
	root := importToken
	if idx := strings.Index(root, "."); idx >= 0 {
		root = root[:idx]
	}
	lang, ok := ffiLibraries[root]
	return lang, ok
}

func detectCrossLanguageImport(importToken string) (string, bool) {
	if lang, ok := crossLangImportExactMatches[importToken]; ok {
		return lang, true
	}
	for _, p := range crossLangImportPrefixes {
		if strings.HasPrefix(importToken, p.prefix) {
			return p.lang, true
		}
	}
	return "", false
}
