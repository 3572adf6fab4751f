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

package query

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// ResultSummary compresses a large result set for downstream LLM
// consumption: a human-readable description, counts grouped by some
// caller-chosen dimension, and free-form aggregate stats.
type ResultSummary struct {
	Description string
	TopGroups   map[string]int
	Stats       map[string]any
}

// PagedResponse is the cursor-paginated envelope every list-returning
// query returns. Total is a pointer because computing an exact count is
// not always cheap; nil means "unknown".
type PagedResponse[T any] struct {
	Items      []T
	Total      *int
	Limit      int
	NextCursor *string
	PrevCursor *string
	Summary    *ResultSummary
}

// EncodeCursor packs an offset and an optional timestamp into an opaque
// base64 token. An empty timestamp omits the separator entirely, so
// EncodeCursor(5, "") and DecodeCursor's inverse round-trip exactly.
func EncodeCursor(offset int, timestamp string) string {
	raw := strconv.Itoa(offset)
	if timestamp != "" {
		raw = raw + ":" + timestamp
	}
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor unpacks a cursor produced by EncodeCursor. timestamp is
// "" when the cursor carried no timestamp segment.
func DecodeCursor(cursor string) (offset int, timestamp string, err error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, "", fmt.Errorf("query: malformed cursor: %w", err)
	}
	parts := strings.SplitN(string(raw), ":", 2)
	offset, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", fmt.Errorf("query: malformed cursor offset: %w", err)
	}
	if len(parts) == 2 {
		timestamp = parts[1]
	}
	return offset, timestamp, nil
}
