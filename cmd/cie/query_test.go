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

package main

import (
	"fmt"
	"testing"

	cliErrors "github.com/kraklabs/cie/internal/errors"
	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/query"
)

func TestParseNodeKind(t *testing.T) {
	kind, err := parseNodeKind("function")
	if err != nil {
		t.Fatalf("parseNodeKind: %v", err)
	}
	if kind != ir.NodeKindFunction {
		t.Errorf("kind = %q", kind)
	}

	if _, err := parseNodeKind("Spaceship"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestPaginateRows(t *testing.T) {
	rows := make([]NodeRow, 25)
	for i := range rows {
		rows[i] = NodeRow{Name: fmt.Sprintf("fn%02d", i)}
	}

	page1, err := paginateRows(rows, 10, "")
	if err != nil {
		t.Fatalf("page1: %v", err)
	}
	if len(page1.Items) != 10 || page1.Items[0].Name != "fn00" {
		t.Errorf("page1 items wrong: %d first=%q", len(page1.Items), page1.Items[0].Name)
	}
	if page1.NextCursor == nil || page1.PrevCursor != nil {
		t.Fatal("page1 should have next but no prev cursor")
	}
	if page1.Total == nil || *page1.Total != 25 {
		t.Errorf("total = %v", page1.Total)
	}

	page2, err := paginateRows(rows, 10, *page1.NextCursor)
	if err != nil {
		t.Fatalf("page2: %v", err)
	}
	if page2.Items[0].Name != "fn10" {
		t.Errorf("page2 starts at %q", page2.Items[0].Name)
	}
	if page2.PrevCursor == nil {
		t.Error("page2 should have a prev cursor")
	}

	page3, err := paginateRows(rows, 10, *page2.NextCursor)
	if err != nil {
		t.Fatalf("page3: %v", err)
	}
	if len(page3.Items) != 5 || page3.NextCursor != nil {
		t.Errorf("page3 should be the last 5 rows, got %d next=%v", len(page3.Items), page3.NextCursor)
	}

	if _, err := paginateRows(rows, 10, "%%%not-base64%%%"); err == nil {
		t.Error("expected error for malformed cursor")
	}
}

func TestSpecError(t *testing.T) {
	spec := query.RetrieveSpec{}
	err := spec.Validate()
	if err == nil {
		t.Fatal("empty spec must fail validation")
	}

	converted := specError(err)
	ue, ok := converted.(*cliErrors.UserError)
	if !ok {
		t.Fatalf("specError returned %T", converted)
	}
	if ue.Code != cliErrors.CodeInvalidArgument {
		t.Errorf("Code = %q", ue.Code)
	}
	if hs, _ := ue.Details["hint_schema"].(string); hs == "" {
		t.Error("hint_schema missing from details")
	}

	// Non-validation errors pass through untouched.
	plain := fmt.Errorf("boom")
	if specError(plain) != plain {
		t.Error("plain errors must pass through")
	}
}
