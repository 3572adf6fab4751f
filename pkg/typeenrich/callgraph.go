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

// callgraphStep handles the "return callee(...)" single-statement
// passthrough function: its return type is whatever the callee's return
// type resolves to, once known. ResolvedCalleeID is not consulted (no
// stage in this module sets it), so the callee is matched by
// bare name against sibling function/method nodes instead; an ambiguous
// or unresolved name is treated as "not known" rather than guessed.
func callgraphStep(dc *docContext, n *ir.Node) (stepResult, bool) {
	stmts := dc.stmtsByFn[n.ID]
	if len(stmts) != 1 {
		return stepResult{}, false
	}
	ret, ok := dc.exprByID[stmts[0]]
	if !ok || ret.Kind != ir.ExprKindReturn || len(ret.ChildIDs) != 1 {
		return stepResult{}, false
	}
	call, ok := dc.exprByID[ret.ChildIDs[0]]
	if !ok || call.Kind != ir.ExprKindCall || call.CalleeName == "" {
		return stepResult{}, false
	}

	calleeName := lastSegment(call.CalleeName)
	var match *ir.Node
	for _, candidate := range dc.nodeByID {
		if candidate.Name != calleeName {
			continue
		}
		switch candidate.Kind {
		case ir.NodeKindFunction, ir.NodeKindMethod:
		default:
			continue
		}
		if match != nil {
			return stepResult{}, false // ambiguous, refuse to guess
		}
		match = candidate
	}
	if match == nil {
		return stepResult{}, false
	}
	rt, ok := dc.returnTypeOf(match.ID)
	if !ok {
		return stepResult{}, false
	}
	return stepResult{typeExpr: rt, origin: ir.TypeOriginInference, source: "callgraph"}, true
}

// lastSegment strips a "self.", "obj.", or "pkg." qualifier prefix from a
// callee name, leaving the bare identifier to match against node names.
func lastSegment(calleeName string) string {
	last := calleeName
	for i := len(calleeName) - 1; i >= 0; i-- {
		if calleeName[i] == '.' {
			last = calleeName[i+1:]
			break
		}
	}
	return last
}
