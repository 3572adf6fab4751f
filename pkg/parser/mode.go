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

package parser

// Mode determines which frontend implementation backs the pipeline.
type Mode string

const (
	// ModeTreeSitter uses tree-sitter for accurate AST-based parsing.
	// Requires CGO and the bundled tree-sitter grammars.
	ModeTreeSitter Mode = "treesitter"

	// ModeSimplified uses line-scanning/brace-counting (fallback). Does
	// not require CGO, but cannot recover expression-level detail.
	ModeSimplified Mode = "simplified"

	// ModeAuto selects tree-sitter when the language has a registered
	// grammar, falling back to ModeSimplified otherwise. Protocol Buffers
	// always resolve to ModeSimplified under this mode, since no
	// tree-sitter-proto grammar is registered.
	ModeAuto Mode = "auto"
)

// DefaultMode is the default frontend selection mode.
const DefaultMode = ModeAuto

// Resolve picks the concrete mode to use for a language given the
// requested mode, per ModeAuto's fallback rule.
func Resolve(requested Mode, lang Language, tsFrontend *Frontend) Mode {
	switch requested {
	case ModeTreeSitter, ModeSimplified:
		return requested
	default:
		if tsFrontend != nil && tsFrontend.Supports(lang) {
			return ModeTreeSitter
		}
		return ModeSimplified
	}
}
