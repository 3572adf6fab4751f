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
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	cliErrors "github.com/kraklabs/cie/internal/errors"
	"github.com/kraklabs/cie/internal/output"
	"github.com/kraklabs/cie/internal/ui"
	"github.com/kraklabs/cie/pkg/ir"
)

// StatusResult is the --json shape of a project's snapshot statistics.
type StatusResult struct {
	RepoID       string         `json:"repo_id"`
	SnapshotID   string         `json:"snapshot_id"`
	RepoRevision string         `json:"repo_revision,omitempty"`
	DataDir      string         `json:"data_dir"`
	Files        int            `json:"files"`
	Nodes        int            `json:"nodes"`
	NodesByKind  map[string]int `json:"nodes_by_kind"`
	Edges        int            `json:"edges"`
	Expressions  int            `json:"expressions"`
	CFGBlocks    int            `json:"cfg_blocks"`
	Occurrences  int            `json:"occurrences"`
	Diagnostics  int            `json:"diagnostics"`
}

// runStatus executes the 'status' command: load the latest snapshot and
// summarize what the IR document contains.
func runStatus(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: cie status\n\nShows statistics for the current snapshot.\n")
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cliErrors.FatalError(err, globals.JSON)
	}
	doc, dataDir, err := loadLatestDoc(cfg)
	if err != nil {
		cliErrors.FatalError(err, globals.JSON)
	}
	st, _ := loadState(dataDir)

	result := StatusResult{
		RepoID:      doc.RepoID,
		SnapshotID:  doc.SnapshotID,
		DataDir:     dataDir,
		Nodes:       len(doc.Nodes),
		NodesByKind: map[string]int{},
		Edges:       len(doc.Edges),
		Expressions: len(doc.Expressions),
		CFGBlocks:   len(doc.CFGBlocks),
		Occurrences: len(doc.Occurrences),
		Diagnostics: len(doc.Diagnostics),
	}
	if st != nil {
		result.RepoRevision = st.RepoRevision
	}
	for i := range doc.Nodes {
		result.NodesByKind[string(doc.Nodes[i].Kind)]++
		if doc.Nodes[i].Kind == ir.NodeKindFile {
			result.Files++
		}
	}

	if globals.JSON {
		if err := output.JSON(result); err != nil {
			cliErrors.FatalError(err, true)
		}
		return
	}

	ui.Header("Snapshot Status")
	fmt.Printf("%s %s\n", ui.Label("Project:"), result.RepoID)
	fmt.Printf("%s %s\n", ui.Label("Snapshot:"), result.SnapshotID)
	if result.RepoRevision != "" {
		fmt.Printf("%s %s\n", ui.Label("Revision:"), ui.DimText(result.RepoRevision))
	}
	fmt.Printf("%s %s\n", ui.Label("Data:"), ui.DimText(result.DataDir))
	fmt.Println()

	ui.SubHeader("Layers:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Files\t%d\n", result.Files)
	fmt.Fprintf(w, "  Nodes\t%d\n", result.Nodes)
	fmt.Fprintf(w, "  Edges\t%d\n", result.Edges)
	fmt.Fprintf(w, "  Expressions\t%d\n", result.Expressions)
	fmt.Fprintf(w, "  CFG blocks\t%d\n", result.CFGBlocks)
	fmt.Fprintf(w, "  Occurrences\t%d\n", result.Occurrences)
	fmt.Fprintf(w, "  Diagnostics\t%d\n", result.Diagnostics)
	w.Flush()

	if len(result.NodesByKind) > 0 {
		fmt.Println()
		ui.SubHeader("Nodes by kind:")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, kind := range []ir.NodeKind{
			ir.NodeKindFunction, ir.NodeKindMethod, ir.NodeKindClass,
			ir.NodeKindInterface, ir.NodeKindVariable, ir.NodeKindImport,
		} {
			if n := result.NodesByKind[string(kind)]; n > 0 {
				fmt.Fprintf(w, "  %s\t%d\n", kind, n)
			}
		}
		w.Flush()
	}
}
