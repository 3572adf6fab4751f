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
	"bytes"
	"strings"
)

// nameColumn locates name's first occurrence on the 1-based line within
// source, returning a 0-based column, or fallback if the line can't be
// read or the name isn't found on it. A language server wants the cursor
// on the identifier, not on "def"/"function"/"class".
func nameColumn(source []byte, line int, name string, fallback int) int {
	if len(source) == 0 || name == "" {
		return fallback
	}
	lines := bytes.Split(source, []byte("\n"))
	if line < 1 || line > len(lines) {
		return fallback
	}
	idx := strings.Index(string(lines[line-1]), name)
	if idx < 0 {
		return fallback
	}
	return idx
}
