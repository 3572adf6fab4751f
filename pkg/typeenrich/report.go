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

// Report summarizes one Run call, for the CLI's `index` progress summary
// and for enrichment-coverage assertions in tests.
type Report struct {
	// Eligible is the count of public-API-candidate nodes considered.
	Eligible int
	// BySource tallies how many nodes each step resolved, keyed by the
	// type_source value it recorded ("ir", "convention", "literal",
	// "builtin", "callgraph", "class", "lsp").
	BySource map[string]int
	// Unresolved counts eligible nodes no step, including LSP, resolved.
	Unresolved int
}

func newReport() *Report {
	return &Report{BySource: make(map[string]int)}
}

func (r *Report) record(source string) {
	r.BySource[source]++
}
