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

// Package sigparse parses function signature strings into ordered
// parameter name/type pairs. It is dependency-free so both pkg/semantic
// (signature building) and pkg/query (display formatting) can import it.
package sigparse

import "strings"

// ParamInfo holds a parsed parameter's name, base type, and modifiers.
type ParamInfo struct {
	Name       string
	Type       string
	HasDefault bool
	Variadic   bool
}

// ParseGoParams parses a Go function signature string, e.g.
// "func (s *Server) Run(ctx context.Context, q Querier) error", and
// returns the parameter names and base types, excluding the receiver.
//
// It handles grouped params ("a, b int"), qualified types
// ("tools.Querier" -> "Querier"), pointer/slice prefixes, and variadic
// ("...string" -> "string"). Func-typed params collapse to type "func".
func ParseGoParams(signature string) []ParamInfo {
	if signature == "" {
		return nil
	}
	paramStr := ExtractParamString(signature)
	if paramStr == "" {
		return nil
	}
	parts := splitAtTopLevelCommas(paramStr)

	var params []ParamInfo
	var pendingType string

	for i := len(parts) - 1; i >= 0; i-- {
		p := strings.TrimSpace(parts[i])
		if p == "" {
			continue
		}
		variadic := strings.Contains(p, "...")
		tokens := splitParamTokens(p)
		switch len(tokens) {
		case 0:
			continue
		case 1:
			if pendingType != "" {
				params = append(params, ParamInfo{Name: tokens[0], Type: pendingType, Variadic: variadic})
			}
		default:
			baseType := NormalizeGoType(tokens[len(tokens)-1])
			name := tokens[0]
			pendingType = baseType
			params = append(params, ParamInfo{Name: name, Type: baseType, Variadic: variadic})
		}
	}

	for i, j := 0, len(params)-1; i < j; i, j = i+1, j-1 {
		params[i], params[j] = params[j], params[i]
	}
	return params
}

// ExtractParamString extracts the parameter list text from a Go function
// signature, skipping a method receiver if present.
func ExtractParamString(sig string) string {
	idx := strings.Index(sig, "func")
	if idx == -1 {
		return ""
	}
	pos := skipWhitespace(sig, idx+4)

	if pos < len(sig) && sig[pos] == '(' {
		end := findMatchingParen(sig, pos)
		if end == -1 {
			return ""
		}
		pos = end + 1
	}

	pos = skipWhitespace(sig, pos)
	for pos < len(sig) && sig[pos] != '(' {
		pos++
	}
	if pos >= len(sig) {
		return ""
	}
	end := findMatchingParen(sig, pos)
	if end == -1 {
		return ""
	}
	return sig[pos+1 : end]
}

// NormalizeGoType extracts the base type name from a Go type expression:
// "*Querier" -> "Querier", "[]Querier" -> "Querier", "tools.Querier" ->
// "Querier", "...string" -> "string", "func(int) error" -> "func".
func NormalizeGoType(t string) string {
	t = strings.TrimLeft(t, "*")
	if strings.HasPrefix(t, "[]") {
		t = strings.TrimLeft(t[2:], "*")
	}
	t = strings.TrimPrefix(t, "...")
	if strings.HasPrefix(t, "func") {
		return "func"
	}
	if dot := strings.LastIndex(t, "."); dot >= 0 {
		t = t[dot+1:]
	}
	return t
}

// ParsePythonParams parses a Python parameter-list string (the text
// between the def's parentheses), e.g. "self, name: str, count=0, *args,
// **kwargs". Type annotations and defaults are recognized; "self"/"cls"
// are kept since callers decide whether to drop the receiver slot.
func ParsePythonParams(paramStr string) []ParamInfo {
	paramStr = strings.TrimSpace(paramStr)
	if paramStr == "" {
		return nil
	}
	var params []ParamInfo
	for _, part := range splitAtTopLevelCommas(paramStr) {
		p := strings.TrimSpace(part)
		if p == "" || p == "/" || p == "*" {
			continue
		}
		variadic := false
		if strings.HasPrefix(p, "**") {
			p = strings.TrimPrefix(p, "**")
			variadic = true
		} else if strings.HasPrefix(p, "*") {
			p = strings.TrimPrefix(p, "*")
			variadic = true
		}
		hasDefault := false
		typ := ""
		name := p
		if eq := strings.Index(p, "="); eq >= 0 {
			hasDefault = true
			name = strings.TrimSpace(p[:eq])
		}
		if colon := strings.Index(name, ":"); colon >= 0 {
			typ = strings.TrimSpace(name[colon+1:])
			name = strings.TrimSpace(name[:colon])
		}
		if name == "" {
			continue
		}
		params = append(params, ParamInfo{Name: name, Type: typ, HasDefault: hasDefault, Variadic: variadic})
	}
	return params
}

// ParseTSParams parses a TypeScript/JavaScript formal-parameter-list
// string, e.g. "name: string, count = 0, ...rest: number[]".
func ParseTSParams(paramStr string) []ParamInfo {
	paramStr = strings.TrimSpace(paramStr)
	if paramStr == "" {
		return nil
	}
	var params []ParamInfo
	for _, part := range splitAtTopLevelCommas(paramStr) {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		variadic := strings.HasPrefix(p, "...")
		p = strings.TrimPrefix(p, "...")

		hasDefault := false
		name := p
		typ := ""
		if eq := strings.Index(p, "="); eq >= 0 {
			hasDefault = true
			name = strings.TrimSpace(p[:eq])
		}
		name = strings.TrimSuffix(name, "?")
		if colon := strings.Index(name, ":"); colon >= 0 {
			typ = strings.TrimSpace(name[colon+1:])
			name = strings.TrimSpace(name[:colon])
		}
		name = strings.TrimSpace(strings.TrimSuffix(name, "?"))
		if name == "" {
			continue
		}
		params = append(params, ParamInfo{Name: name, Type: typ, HasDefault: hasDefault, Variadic: variadic})
	}
	return params
}

func findMatchingParen(s string, pos int) int {
	depth := 0
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func splitParamTokens(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.TrimPrefix(s, "...")

	var tokens []string
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		if s[i] == '*' || s[i] == '[' {
			tokens = append(tokens, s[start:])
			break
		}
		if strings.HasPrefix(s[i:], "func") {
			tokens = append(tokens, s[start:])
			break
		}
		for i < len(s) && s[i] != ' ' && s[i] != '\t' {
			if s[i] == '(' {
				end := findMatchingParen(s, i)
				if end == -1 {
					i = len(s)
				} else {
					i = end + 1
				}
			} else {
				i++
			}
		}
		token := s[start:i]
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func skipWhitespace(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\n') {
		pos++
	}
	return pos
}
