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

import "github.com/kraklabs/cie/pkg/ir"

// builtinMethodReturnTypes maps (receiverType, methodName) pairs from
// Python's builtin str/list/dict/set types to their return type, the
// registry the fallback chain consults for method nodes whose
// containing type happens to be one of these well-known receivers
// (e.g. a class body reopening or subclassing a builtin container).
var builtinMethodReturnTypes = map[[2]string]string{
	{"str", "upper"}:     "str",
	{"str", "lower"}:     "str",
	{"str", "strip"}:     "str",
	{"str", "split"}:     "list[str]",
	{"str", "join"}:      "str",
	{"str", "format"}:    "str",
	{"list", "append"}:   "None",
	{"list", "extend"}:   "None",
	{"list", "pop"}:      "Any",
	{"list", "sort"}:     "None",
	{"dict", "get"}:      "Any",
	{"dict", "keys"}:     "list",
	{"dict", "values"}:   "list",
	{"dict", "items"}:    "list",
	{"set", "add"}:       "None",
	{"set", "discard"}:   "None",
}

// builtinFunctionReturnTypes maps a known builtin function's name to its
// return type, consulted for top-level function nodes whose name happens
// to shadow one of these.
var builtinFunctionReturnTypes = map[string]string{
	"len":   "int",
	"str":   "str",
	"int":   "int",
	"float": "float",
	"bool":  "bool",
	"list":  "list",
	"dict":  "dict",
	"sorted": "list",
	"print": "None",
}

// builtinStep resolves a method's or function's return type against the
// builtin registry when its receiver type (the containing class's name)
// or its own name is one of the well-known standard-library members.
func builtinStep(dc *docContext, n *ir.Node) (stepResult, bool) {
	if n.Kind == ir.NodeKindMethod {
		if parent, ok := dc.nodeByID[n.ParentID]; ok {
			if rt, ok := builtinMethodReturnTypes[[2]string{parent.Name, n.Name}]; ok {
				return stepResult{typeExpr: rt, origin: ir.TypeOriginInference, source: "builtin"}, true
			}
		}
	}
	if n.Kind == ir.NodeKindFunction {
		if rt, ok := builtinFunctionReturnTypes[n.Name]; ok {
			return stepResult{typeExpr: rt, origin: ir.TypeOriginInference, source: "builtin"}, true
		}
	}
	return stepResult{}, false
}
