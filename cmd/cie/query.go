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
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	cliErrors "github.com/kraklabs/cie/internal/errors"
	"github.com/kraklabs/cie/internal/output"
	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/query"
)

// NodeRow is one result row of a node query, flattened for display.
type NodeRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
}

// runQuery executes the 'query' command: an indexed node lookup over the
// latest snapshot, expressed internally as a validated RetrieveSpec.
func runQuery(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	name := fs.String("name", "", "Filter by substring of the node name")
	file := fs.String("file", "", "Filter by file path")
	callersOf := fs.String("callers-of", "", "List callers of the named function instead of a kind listing")
	limit := fs.Int("limit", 50, "Maximum results per page")
	cursor := fs.String("cursor", "", "Resume from a previous page's next_cursor")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: cie query [kind] [options]

Lists IR nodes of one kind from the latest snapshot. Kind is one of
File, Class, Interface, Enum, Function, Method, Variable, Import.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  cie query Function --limit 10
  cie query Method --name Handle
  cie query --callers-of NewPipeline
  cie query Function --file pkg/ingestion/pipeline.go --json
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cliErrors.FatalError(err, globals.JSON)
	}
	doc, _, err := loadLatestDoc(cfg)
	if err != nil {
		cliErrors.FatalError(err, globals.JSON)
	}

	kindArg := fs.Arg(0)
	if kindArg == "" && *callersOf == "" {
		fmt.Fprintf(os.Stderr, "Error: a node kind or --callers-of is required\n")
		fs.Usage()
		os.Exit(1)
	}

	spec := query.RetrieveSpec{
		Intent:     "retrieve",
		TemplateID: "node_lookup",
		Scope:      query.Scope{RepoID: doc.RepoID, SnapshotID: doc.SnapshotID},
		Params: map[string]any{
			"kind":       kindArg,
			"name":       *name,
			"file":       *file,
			"callers_of": *callersOf,
		},
		Limits: query.Limits{MaxPaths: *limit, TimeoutMs: 30_000},
	}
	if err := spec.Validate(); err != nil {
		cliErrors.FatalError(specError(err), globals.JSON)
	}

	idx := query.NewIndexes(doc)

	var matched []*ir.Node
	if *callersOf != "" {
		matched, err = callersOfNode(doc, idx, *callersOf)
		if err != nil {
			cliErrors.FatalError(err, globals.JSON)
		}
	} else {
		kind, kindErr := parseNodeKind(kindArg)
		if kindErr != nil {
			cliErrors.FatalError(kindErr, globals.JSON)
		}
		matched = idx.NodesByKind(kind)
	}

	var rows []NodeRow
	for _, n := range matched {
		if *name != "" && !strings.Contains(strings.ToLower(n.Name), strings.ToLower(*name)) {
			continue
		}
		if *file != "" && n.FilePath != *file {
			continue
		}
		rows = append(rows, NodeRow{
			ID:       n.ID,
			Name:     n.Name,
			Kind:     string(n.Kind),
			FilePath: n.FilePath,
			Line:     n.Span.StartLine,
		})
	}

	page, err := paginateRows(rows, *limit, *cursor)
	if err != nil {
		cliErrors.FatalError(err, globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(page); err != nil {
			cliErrors.FatalError(err, true)
		}
		return
	}
	printNodeTable(page)
}

// specError converts a query.ValidationError into the CLI's structured
// input error, preserving hint_schema and suggested_fixes so callers in
// JSON mode can auto-repair.
func specError(err error) error {
	var ve *query.ValidationError
	if errors.As(err, &ve) {
		return cliErrors.NewInputError(
			"Invalid query spec",
			ve.Code,
			strings.Join(ve.SuggestedFixes, "; "),
		).WithDetails(map[string]any{
			"error_code":      ve.Code,
			"hint_schema":     ve.HintSchema,
			"suggested_fixes": ve.SuggestedFixes,
		})
	}
	return err
}

// parseNodeKind validates the positional kind argument.
func parseNodeKind(arg string) (ir.NodeKind, error) {
	known := []ir.NodeKind{
		ir.NodeKindFile, ir.NodeKindModule, ir.NodeKindClass, ir.NodeKindInterface,
		ir.NodeKindEnum, ir.NodeKindFunction, ir.NodeKindMethod, ir.NodeKindArrowFunction,
		ir.NodeKindVariable, ir.NodeKindField, ir.NodeKindParameter, ir.NodeKindImport,
		ir.NodeKindConstant, ir.NodeKindTypeAlias,
	}
	for _, k := range known {
		if strings.EqualFold(arg, string(k)) {
			return k, nil
		}
	}
	names := make([]string, len(known))
	for i, k := range known {
		names[i] = string(k)
	}
	return "", cliErrors.NewInputError(
		"Unknown node kind",
		fmt.Sprintf("%q is not a node kind", arg),
		"Use one of: "+strings.Join(names, ", "),
	)
}

// callersOfNode resolves every node whose name matches fqn exactly and
// returns the distinct source nodes of Calls edges targeting them.
func callersOfNode(doc *ir.IRDocument, idx *query.Indexes, fqn string) ([]*ir.Node, error) {
	var targets []*ir.Node
	for i := range doc.Nodes {
		if doc.Nodes[i].Name == fqn {
			targets = append(targets, &doc.Nodes[i])
		}
	}
	if len(targets) == 0 {
		return nil, cliErrors.NewNotFoundError(
			"Function not found",
			fmt.Sprintf("No node named %q in the snapshot", fqn),
			"Check the exact name with 'cie query Function --name "+fqn+"'",
		)
	}

	seen := map[string]bool{}
	var callers []*ir.Node
	for _, target := range targets {
		for _, e := range idx.EdgesByTarget(target.ID) {
			if e.Kind != ir.EdgeKindCalls || seen[e.SourceID] {
				continue
			}
			seen[e.SourceID] = true
			if n, ok := idx.NodeByID(e.SourceID); ok {
				callers = append(callers, n)
			}
		}
	}
	return callers, nil
}

// paginateRows applies cursor-based pagination to the filtered rows.
func paginateRows(rows []NodeRow, limit int, cursor string) (*query.PagedResponse[NodeRow], error) {
	offset := 0
	if cursor != "" {
		var err error
		offset, _, err = query.DecodeCursor(cursor)
		if err != nil {
			return nil, cliErrors.NewInputError("Invalid cursor", err.Error(), "Pass a next_cursor value from a previous page")
		}
	}
	if limit <= 0 {
		limit = 50
	}
	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}

	total := len(rows)
	resp := &query.PagedResponse[NodeRow]{
		Items: rows[offset:end],
		Total: &total,
		Limit: limit,
	}
	if end < len(rows) {
		next := query.EncodeCursor(end, "")
		resp.NextCursor = &next
	}
	if offset > 0 {
		prevOffset := offset - limit
		if prevOffset < 0 {
			prevOffset = 0
		}
		prev := query.EncodeCursor(prevOffset, "")
		resp.PrevCursor = &prev
	}
	return resp, nil
}

func printNodeTable(page *query.PagedResponse[NodeRow]) {
	if len(page.Items) == 0 {
		fmt.Println("No results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tFILE\tLINE")
	fmt.Fprintln(w, "---\t---\t---\t---")
	for _, r := range page.Items {
		name := r.Name
		if len(name) > 60 {
			name = name[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", name, r.Kind, r.FilePath, r.Line)
	}
	w.Flush()

	if page.Total != nil {
		fmt.Printf("\n(%d of %d rows)", len(page.Items), *page.Total)
	} else {
		fmt.Printf("\n(%d rows)", len(page.Items))
	}
	if page.NextCursor != nil {
		fmt.Printf("  next: --cursor %s", *page.NextCursor)
	}
	fmt.Println()
}
