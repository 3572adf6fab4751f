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
	"strings"

	"github.com/kraklabs/cie/pkg/ir"
)

// dunderReturnTypes maps Python's well-known dunder methods to their
// conventional return type, independent of the class they're defined on.
var dunderReturnTypes = map[string]string{
	"__init__":     "None",
	"__del__":      "None",
	"__len__":      "int",
	"__str__":      "str",
	"__repr__":     "str",
	"__bool__":     "bool",
	"__hash__":     "int",
	"__eq__":       "bool",
	"__ne__":       "bool",
	"__lt__":       "bool",
	"__le__":       "bool",
	"__gt__":       "bool",
	"__ge__":       "bool",
	"__contains__": "bool",
	"__enter__":    "Self",
	"__exit__":     "bool",
}

var mutatorPrefixes = []string{
	"set_", "add_", "remove_", "delete_", "clear_", "update_", "reset_", "append_", "put_",
}

var builderPrefixes = []string{"with_"}

// conventionStep applies name- and shape-based heuristics: dunder
// methods, test functions, fixtures, builder methods, predicate-style
// accessors, and mutators, in that order.
func conventionStep(dc *docContext, n *ir.Node) (stepResult, bool) {
	name := n.Name

	if rt, ok := dunderReturnTypes[name]; ok {
		return stepResult{typeExpr: rt, origin: ir.TypeOriginHeuristic, source: "convention"}, true
	}

	if strings.HasPrefix(name, "test_") || name == "setUp" || name == "tearDown" || name == "setUpClass" || name == "tearDownClass" {
		return stepResult{typeExpr: "None", origin: ir.TypeOriginHeuristic, source: "convention"}, true
	}

	if hasFixtureDecorator(n) {
		return stepResult{typeExpr: "Any", origin: ir.TypeOriginHeuristic, source: "convention"}, true
	}

	if name == "build" || hasAnyPrefix(name, builderPrefixes) {
		return stepResult{typeExpr: "Self", origin: ir.TypeOriginHeuristic, source: "convention"}, true
	}

	if hasAnyPrefix(name, []string{"is_", "has_", "can_"}) {
		return stepResult{typeExpr: "bool", origin: ir.TypeOriginHeuristic, source: "convention"}, true
	}

	if hasAnyPrefix(name, mutatorPrefixes) && !hasValueReturn(dc, n) {
		return stepResult{typeExpr: "None", origin: ir.TypeOriginHeuristic, source: "convention"}, true
	}

	return stepResult{}, false
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// hasFixtureDecorator reports whether the structural generator recorded
// a "decorators" attribute list containing a pytest-fixture-style name.
func hasFixtureDecorator(n *ir.Node) bool {
	decorators, ok := n.Attrs.List("decorators")
	if !ok {
		return false
	}
	for _, d := range decorators {
		if d.Kind != ir.AttrKindString {
			continue
		}
		if strings.Contains(d.Str, "fixture") {
			return true
		}
	}
	return false
}

// hasValueReturn reports whether any Return expression in n's body
// carries a payload, distinguishing a bare "return" (None) from
// "return result" for the mutator-prefix heuristic.
func hasValueReturn(dc *docContext, n *ir.Node) bool {
	for _, e := range dc.exprsByFn[n.ID] {
		if e.Kind == ir.ExprKindReturn && len(e.ChildIDs) > 0 {
			return true
		}
	}
	return false
}
