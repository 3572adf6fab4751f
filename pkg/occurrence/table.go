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
	"math"

	"github.com/kraklabs/cie/pkg/ir"
)

// Table indexes a document's occurrences by symbol, file, and role for
// the query layer's symbol-lookup and "find references" operations.
type Table struct {
	bySymbol map[ir.Descriptor][]*ir.Occurrence
	byFile   map[string][]*ir.Occurrence
	byRole   map[ir.SymbolRole][]*ir.Occurrence
}

// NewTable indexes occs. occs must outlive the returned Table; entries are
// referenced by pointer into the backing slice.
func NewTable(occs []ir.Occurrence) *Table {
	t := &Table{
		bySymbol: make(map[ir.Descriptor][]*ir.Occurrence),
		byFile:   make(map[string][]*ir.Occurrence),
		byRole:   make(map[ir.SymbolRole][]*ir.Occurrence),
	}
	for i := range occs {
		o := &occs[i]
		t.bySymbol[o.Descriptor] = append(t.bySymbol[o.Descriptor], o)
		t.byFile[o.FilePath] = append(t.byFile[o.FilePath], o)
		t.byRole[o.Role] = append(t.byRole[o.Role], o)
	}
	return t
}

// BySymbol returns every occurrence of descriptor, in document order.
func (t *Table) BySymbol(d ir.Descriptor) []*ir.Occurrence { return t.bySymbol[d] }

// ByFile returns every occurrence recorded in filePath, in document order.
func (t *Table) ByFile(filePath string) []*ir.Occurrence { return t.byFile[filePath] }

// ByRole returns every occurrence with the given role, in document order.
func (t *Table) ByRole(role ir.SymbolRole) []*ir.Occurrence { return t.byRole[role] }

// Importance blends a symbol's occurrences into a single monotone score:
// having a definition contributes a fixed base, reference count
// contributes diminishing returns (log1p so one more reference always
// helps but popularity saturates), and doc-comment presence plus
// exported status each add a fixed bonus.
func Importance(occs []*ir.Occurrence, hasDocstring, isExported bool) float64 {
	var score float64
	var defs, refs int
	for _, o := range occs {
		if o.Role == ir.SymbolRoleDefinition {
			defs++
		} else {
			refs++
		}
	}
	if defs > 0 {
		score += 1.0
	}
	score += math.Log1p(float64(refs)) * 0.5
	if hasDocstring {
		score += 0.3
	}
	if isExported {
		score += 0.5
	}
	return score
}
