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

package occurrence

import (
	"fmt"
	"strings"
)

// staticSymbolBridge maps well-known builtin descriptors across
// languages, the symbol-level counterpart to the generic-type rewrite
// rules below. Keys and values are bare "lang:package#name#" forms,
// independent of the full scheme-qualified Descriptor format.
var staticSymbolBridge = map[string]string{
	"python:builtins#str#":   "java:java.lang#String#",
	"python:builtins#int#":   "java:java.lang#Integer#",
	"python:builtins#float#": "java:java.lang#Double#",
	"python:builtins#bool#":  "java:java.lang#Boolean#",
	"python:builtins#bytes#": "java:byte[]#",
}

// pythonToJavaBuiltins maps bare Python type names (as they appear
// inside a generic's type argument) to their Java equivalents.
var pythonToJavaBuiltins = map[string]string{
	"str":   "String",
	"int":   "Integer",
	"float": "Double",
	"bool":  "Boolean",
	"bytes": "byte[]",
}

// BridgeSymbol looks up a static cross-language symbol mapping, the
// "python:builtins#str# <-> java:java.lang#String#" style table from
// spec, trying both directions since the table is defined once.
func BridgeSymbol(symbol string) (string, bool) {
	if v, ok := staticSymbolBridge[symbol]; ok {
		return v, true
	}
	for k, v := range staticSymbolBridge {
		if v == symbol {
			return k, true
		}
	}
	return "", false
}

// BridgeType rewrites a type expression written in fromLang into its
// toLang equivalent: generic containers (list[T], dict[K,V],
// Optional[T]) recurse into their type arguments; unrecognized
// user-defined type names pass through verbatim, since the bridge has
// no registry entry to rewrite them to.
func BridgeType(typeExpr, fromLang, toLang string) string {
	typeExpr = strings.TrimSpace(typeExpr)
	if fromLang == "python" && toLang == "java" {
		return bridgePythonToJava(typeExpr)
	}
	return typeExpr
}

func bridgePythonToJava(t string) string {
	if name, args, ok := splitGeneric(t); ok {
		switch name {
		case "list", "List":
			if len(args) == 1 {
				return fmt.Sprintf("java.util.List<%s>", bridgePythonToJava(args[0]))
			}
		case "dict", "Dict":
			if len(args) == 2 {
				return fmt.Sprintf("java.util.Map<%s,%s>", bridgePythonToJava(args[0]), bridgePythonToJava(args[1]))
			}
		case "Optional":
			if len(args) == 1 {
				return fmt.Sprintf("java.util.Optional<%s>", bridgePythonToJava(args[0]))
			}
		}
	}
	if mapped, ok := pythonToJavaBuiltins[t]; ok {
		return mapped
	}
	return t
}

// splitGeneric parses "Name[arg1, arg2]" into ("Name", ["arg1","arg2"], true);
// anything without a matching trailing "]" is not a generic form.
func splitGeneric(t string) (name string, args []string, ok bool) {
	open := strings.Index(t, "[")
	if open == -1 || !strings.HasSuffix(t, "]") {
		return "", nil, false
	}
	name = strings.TrimSpace(t[:open])
	inner := t[open+1 : len(t)-1]
	return name, splitTopLevelCommas(inner), true
}

// splitTopLevelCommas splits inner on commas that are not nested inside
// another pair of brackets, so "dict[str, list[int]]"'s outer split
// yields ["str", "list[int]"] rather than three pieces.
func splitTopLevelCommas(inner string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range inner {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(inner[start:]))
	return parts
}
