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

package ir

// SymbolRole enumerates SCIP-style occurrence roles: whether a use
// defines, references, or writes its symbol.
type SymbolRole string

const (
	SymbolRoleDefinition SymbolRole = "Definition"
	SymbolRoleReference  SymbolRole = "Reference"
	SymbolRoleWrite      SymbolRole = "Write"
	SymbolRoleImport     SymbolRole = "Import"
)

// Descriptor is a SCIP-style symbol descriptor string builder result:
// "<scheme> <package> <version> <path-segments>". Descriptor values are
// opaque identifiers meant for exact string comparison, not parsing.
type Descriptor string

// Occurrence binds a symbol descriptor to a span in a file, the unit the
// cross-language bridge (pkg/occurrence) uses to unify references to the
// same logical symbol across languages in a polyglot repo.
type Occurrence struct {
	ID         string     `json:"id"`
	Descriptor Descriptor `json:"descriptor"`
	FilePath   string     `json:"file_path"`
	Span       Span       `json:"span"`
	Role       SymbolRole `json:"role"`
	NodeID     string     `json:"node_id,omitempty"`
	Language   string     `json:"language"`
	LocalSeq   int64      `json:"local_seq"`
}

// UnifiedSymbol groups the occurrences that the cross-language bridge has
// determined refer to the same logical entity (e.g. a Python function
// exposed to Java via a generated binding), keyed by a canonical
// descriptor chosen deterministically (lexicographically smallest member
// descriptor).
type UnifiedSymbol struct {
	CanonicalDescriptor Descriptor   `json:"canonical_descriptor"`
	MemberDescriptors   []Descriptor `json:"member_descriptors"`
	Languages           []string     `json:"languages"`
}
