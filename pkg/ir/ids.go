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

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
)

// NormalizePath normalizes a file path for consistent ID generation:
// forward slashes, no leading "./", no leading "/", cleaned of redundant
// separators. Two runs on the same logical path must always agree.
func NormalizePath(path string) string {
	if len(path) >= 2 && path[0:2] == "./" {
		path = path[2:]
	}
	path = filepath.Clean(path)
	path = filepath.ToSlash(path)
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return path
}

// NodeID computes the deterministic hash ID of a Node per spec: a
// collision-resistant hash over (repo_id, kind, file_path, fqn, language).
// Two runs on identical input must yield bit-identical IDs; this is the
// only node-id scheme in this codebase (the legacy "file::name" form that
// older corpora use is retired, not ported).
func NodeID(repoID string, kind NodeKind, filePath, fqn, language string) string {
	normalized := NormalizePath(filePath)
	idStr := fmt.Sprintf("%s|%s|%s|%s|%s", repoID, kind, normalized, fqn, language)
	sum := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("%s:%s", strings2NodePrefix(kind), hex.EncodeToString(sum[:]))
}

func strings2NodePrefix(kind NodeKind) string {
	switch kind {
	case NodeKindFile:
		return "file"
	case NodeKindFunction, NodeKindMethod, NodeKindArrowFunction:
		return "func"
	case NodeKindClass, NodeKindInterface, NodeKindEnum:
		return "type"
	case NodeKindVariable, NodeKindParameter, NodeKindField, NodeKindConstant:
		return "var"
	case NodeKindImport:
		return "import"
	case NodeKindModule:
		return "mod"
	case NodeKindTypeAlias:
		return "talias"
	default:
		return "node"
	}
}

// EdgeID computes the deterministic hash ID of an Edge: a hash over
// (kind, source_id, target_id, occurrence_index). The occurrence index
// disambiguates multi-edges (e.g. the same caller invoking the same
// callee twice) and is tracked by CallOccurrenceIndex during generation.
func EdgeID(kind EdgeKind, sourceID, targetID string, occurrence int) string {
	idStr := fmt.Sprintf("%s|%s|%s|%d", kind, sourceID, targetID, occurrence)
	sum := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("edge:%s", hex.EncodeToString(sum[:16]))
}

// CallOccurrenceIndex tracks per-(caller,callee) occurrence counters so
// that repeated calls from the same caller to the same callee receive
// distinct, stable edge IDs. Not safe for concurrent use; callers
// generating edges from multiple goroutines must shard one index per
// goroutine and merge afterwards.
type CallOccurrenceIndex struct {
	counts map[[2]string]int
}

// NewCallOccurrenceIndex returns an empty index.
func NewCallOccurrenceIndex() *CallOccurrenceIndex {
	return &CallOccurrenceIndex{counts: make(map[[2]string]int)}
}

// Next returns the next occurrence counter for the (caller, callee) pair
// and advances it, starting at 0 for the first occurrence.
func (c *CallOccurrenceIndex) Next(caller, callee string) int {
	key := [2]string{caller, callee}
	n := c.counts[key]
	c.counts[key] = n + 1
	return n
}

// ContentHash hashes a node's body text for change detection across
// incremental runs (used to decide whether a function's body-derived
// layers need recomputation even when its ID is unchanged).
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:16])
}

// ExpressionID computes a deterministic hash ID for a lowered expression,
// scoped to its owning function and source span so re-lowering an
// unchanged function body yields byte-identical expression IDs.
func ExpressionID(functionNodeID string, kind ExpressionKind, span Span) string {
	idStr := fmt.Sprintf("%s|%s|%s", functionNodeID, kind, span.String())
	sum := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("expr:%s", hex.EncodeToString(sum[:16]))
}

// CFGBlockID computes a deterministic hash ID for a control-flow block.
func CFGBlockID(functionNodeID string, kind CFGBlockKind, index int) string {
	idStr := fmt.Sprintf("%s|%s|%d", functionNodeID, kind, index)
	sum := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("blk:%s", hex.EncodeToString(sum[:16]))
}

// CFGEdgeID computes a deterministic hash ID for a control-flow edge.
func CFGEdgeID(fromID, toID string, label CFGEdgeLabel) string {
	idStr := fmt.Sprintf("%s|%s|%s", fromID, toID, label)
	sum := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("cfge:%s", hex.EncodeToString(sum[:16]))
}

// SSAVersionID computes a deterministic hash ID for one SSA version of a
// source-level variable within a function.
func SSAVersionID(functionNodeID, variableName string, version int) string {
	idStr := fmt.Sprintf("%s|%s|%d", functionNodeID, variableName, version)
	sum := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("ssa:%s", hex.EncodeToString(sum[:16]))
}

// DFGEdgeID computes a deterministic hash ID for a data-flow edge.
func DFGEdgeID(kind DFGEdgeKind, ssaVersionID, expressionID string) string {
	idStr := fmt.Sprintf("%s|%s|%s", kind, ssaVersionID, expressionID)
	sum := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("dfge:%s", hex.EncodeToString(sum[:16]))
}

// PDGEdgeID computes a deterministic hash ID for a program-dependence edge.
func PDGEdgeID(kind PDGEdgeKind, fromID, toID string) string {
	idStr := fmt.Sprintf("%s|%s|%s", kind, fromID, toID)
	sum := sha256.Sum256([]byte(idStr))
	return fmt.Sprintf("pdge:%s", hex.EncodeToString(sum[:16]))
}
