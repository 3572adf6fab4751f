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
	"sort"
	"strconv"
	"strings"

	"github.com/kraklabs/cie/pkg/ir"
)

// literalStep infers a return type from the literal payloads of every
// return statement in the node's body: "return 0" contributes int,
// "return ''" contributes str. Distinct types across multiple returns
// are combined into a sorted union ("int|str"), never just the first
// or last one seen.
func literalStep(dc *docContext, n *ir.Node) (stepResult, bool) {
	seen := map[string]bool{}
	for _, e := range dc.exprsByFn[n.ID] {
		if e.Kind != ir.ExprKindReturn {
			continue
		}
		for _, childID := range e.ChildIDs {
			child, ok := dc.exprByID[childID]
			if !ok || child.Kind != ir.ExprKindLiteral {
				continue
			}
			if t := literalTextType(child.Text); t != "" {
				seen[t] = true
			}
		}
	}
	if len(seen) == 0 {
		return stepResult{}, false
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return stepResult{typeExpr: strings.Join(types, "|"), origin: ir.TypeOriginInference, source: "literal"}, true
}

// literalTextType pattern-matches a literal's verbatim source text into
// a coarse type name. Quote-delimited text is str, true/false is bool,
// None/nil/null/undefined all map to "None" whatever the language, a
// bare integer is int, anything else with a decimal point is float.
func literalTextType(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	switch text {
	case "True", "False", "true", "false":
		return "bool"
	case "None":
		return "None"
	case "nil", "null", "undefined":
		return "None"
	}
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return "str"
		}
	}
	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		return "int"
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return "float"
	}
	return ""
}
