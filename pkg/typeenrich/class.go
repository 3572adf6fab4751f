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

// classStep is the chain's unconditional last local resort for Class
// nodes: every class is its own type constructor, "type[Name]" by
// convention regardless of what the class actually does.
func classStep(dc *docContext, n *ir.Node) (stepResult, bool) {
	switch n.Kind {
	case ir.NodeKindClass, ir.NodeKindInterface, ir.NodeKindEnum:
	default:
		return stepResult{}, false
	}
	return stepResult{typeExpr: "type[" + n.Name + "]", origin: ir.TypeOriginHeuristic, source: "class"}, true
}
