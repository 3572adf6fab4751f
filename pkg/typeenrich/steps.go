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

// stepResult is what a successful step contributes.
type stepResult struct {
	typeExpr string
	origin   ir.TypeOrigin
	// source is the value recorded in Node.Attrs["type_source"].
	source string
}

// step is one link of the fallback chain: given the document context and
// an eligible node, it either resolves a type or declines (ok=false),
// in which case the enricher tries the next step.
type step func(dc *docContext, n *ir.Node) (stepResult, bool)

// localSteps is the fallback chain run synchronously and in order, one
// pass over every eligible node across all documents, before anything is
// handed to the LSP step.
var localSteps = []step{
	irStep,
	conventionStep,
	literalStep,
	builtinStep,
	callgraphStep,
	classStep,
}

// irStep adopts a return type pkg/semantic already captured from a type
// annotation during signature extraction: the cheapest and most reliable
// source, so it runs first and wins over every inference heuristic below.
func irStep(dc *docContext, n *ir.Node) (stepResult, bool) {
	sig, ok := dc.sigByNode[n.ID]
	if !ok || sig.ReturnType == "" {
		return stepResult{}, false
	}
	return stepResult{typeExpr: sig.ReturnType, origin: ir.TypeOriginAnnotation, source: "ir"}, true
}
