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

import "strings"

// SimpleDecl is one line-scanned top-level declaration recovered by
// SimplifiedFrontend. It carries none of the nuance a tree-sitter grammar
// would (no expression bodies, no nested scopes) — only enough for the
// structural generator to still emit a File node and a coarse set of
// Function/Class nodes when tree-sitter grammars are unavailable.
type SimpleDecl struct {
	Kind      string // "function", "class", "service", "message", "enum"
	Name      string
	StartLine int
	EndLine   int
	Text      string
}

// SimplifiedFrontend recovers a coarse declaration list via line scanning
// and brace counting, with no AST and no tree-sitter dependency. It is
// the only frontend for Protocol Buffers, since no tree-sitter-proto
// grammar is vendored: ProtoGenerator scans .proto content with
// ScanProtobuf. ScanGo and ScanPython have no caller outside this
// package's tests; the ingestion pipeline does not consult Mode and
// parses Go and Python with the tree-sitter Frontend.
type SimplifiedFrontend struct{}

// NewSimplifiedFrontend constructs a SimplifiedFrontend.
func NewSimplifiedFrontend() *SimplifiedFrontend {
	return &SimplifiedFrontend{}
}

// ScanGo recovers top-level func declarations from Go source by brace
// counting, the same structure ScanProtobuf uses.
func (f *SimplifiedFrontend) ScanGo(content string) []SimpleDecl {
	return scanBraceBlocks(content, "func ", func(trimmed string) string {
		rest := strings.TrimPrefix(trimmed, "func ")
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "(") {
			if idx := strings.Index(rest, ")"); idx >= 0 {
				rest = strings.TrimSpace(rest[idx+1:])
			}
		}
		name := rest
		if idx := strings.IndexAny(name, "(["); idx >= 0 {
			name = name[:idx]
		}
		return strings.TrimSpace(name)
	}, "function")
}

// ScanPython recovers top-level def/class declarations by indentation,
// since Python has no braces to count.
func (f *SimplifiedFrontend) ScanPython(content string) []SimpleDecl {
	lines := strings.Split(content, "\n")
	var decls []SimpleDecl
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		indent := len(line) - len(trimmed)
		if indent != 0 {
			continue
		}
		kind := ""
		var name string
		switch {
		case strings.HasPrefix(trimmed, "def "):
			kind = "function"
			name = declName(trimmed, "def ")
		case strings.HasPrefix(trimmed, "async def "):
			kind = "function"
			name = declName(trimmed, "async def ")
		case strings.HasPrefix(trimmed, "class "):
			kind = "class"
			name = declName(trimmed, "class ")
		default:
			continue
		}
		if name == "" {
			continue
		}
		end := findIndentBlockEnd(lines, i)
		decls = append(decls, SimpleDecl{
			Kind:      kind,
			Name:      name,
			StartLine: i + 1,
			EndLine:   end + 1,
			Text:      strings.Join(lines[i:end+1], "\n"),
		})
	}
	return decls
}

// ScanProtobuf recovers services, messages, and enums by brace
// counting; .proto syntax is regular enough that no grammar is needed.
// The rpc lines inside a service are part of its Text and are not
// returned as declarations of their own.
func (f *SimplifiedFrontend) ScanProtobuf(content string) []SimpleDecl {
	var decls []SimpleDecl
	decls = append(decls, scanBraceBlocks(content, "service ", func(t string) string {
		return strings.TrimSuffix(strings.Fields(strings.TrimPrefix(t, "service "))[0], "{")
	}, "service")...)
	decls = append(decls, scanBraceBlocks(content, "message ", func(t string) string {
		return strings.TrimSuffix(strings.Fields(strings.TrimPrefix(t, "message "))[0], "{")
	}, "message")...)
	decls = append(decls, scanBraceBlocks(content, "enum ", func(t string) string {
		return strings.TrimSuffix(strings.Fields(strings.TrimPrefix(t, "enum "))[0], "{")
	}, "enum")...)
	return decls
}

func declName(trimmed, prefix string) string {
	rest := strings.TrimPrefix(trimmed, prefix)
	if idx := strings.IndexAny(rest, "(:"); idx >= 0 {
		rest = rest[:idx]
	}
	return strings.TrimSpace(rest)
}

func findIndentBlockEnd(lines []string, start int) int {
	baseIndent := len(lines[start]) - len(strings.TrimLeft(lines[start], " \t"))
	end := start
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			end = i
			continue
		}
		indent := len(lines[i]) - len(strings.TrimLeft(lines[i], " \t"))
		if indent <= baseIndent {
			return end
		}
		end = i
	}
	return end
}

func scanBraceBlocks(content, prefix string, nameFn func(string) string, kind string) []SimpleDecl {
	lines := strings.Split(content, "\n")
	var decls []SimpleDecl
	braceCount := 0
	blockStart := -1
	var name string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") {
			continue
		}
		if blockStart == -1 {
			if strings.HasPrefix(trimmed, prefix) {
				n := nameFn(trimmed)
				if n == "" {
					continue
				}
				name = n
				blockStart = i
				braceCount = strings.Count(trimmed, "{") - strings.Count(trimmed, "}")
				if braceCount <= 0 && strings.Contains(trimmed, "{") {
					decls = append(decls, SimpleDecl{Kind: kind, Name: name, StartLine: i + 1, EndLine: i + 1, Text: line})
					blockStart = -1
				} else if !strings.Contains(trimmed, "{") {
					// single-line declaration with no body (e.g. func signature only)
					decls = append(decls, SimpleDecl{Kind: kind, Name: name, StartLine: i + 1, EndLine: i + 1, Text: line})
					blockStart = -1
				}
			}
			continue
		}
		braceCount += strings.Count(trimmed, "{") - strings.Count(trimmed, "}")
		if braceCount <= 0 {
			decls = append(decls, SimpleDecl{
				Kind:      kind,
				Name:      name,
				StartLine: blockStart + 1,
				EndLine:   i + 1,
				Text:      strings.Join(lines[blockStart:i+1], "\n"),
			})
			blockStart = -1
		}
	}
	return decls
}
