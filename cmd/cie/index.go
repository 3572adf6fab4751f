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
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	flag "github.com/spf13/pflag"

	cliErrors "github.com/kraklabs/cie/internal/errors"
	"github.com/kraklabs/cie/internal/output"
	"github.com/kraklabs/cie/internal/ui"
	"github.com/kraklabs/cie/pkg/ingestion"
	"github.com/kraklabs/cie/pkg/taint"
	"github.com/kraklabs/cie/pkg/workspace"
)

// schemaVersion is the IRDocument schema this binary writes.
const schemaVersion = "2.3"

// IndexReport is the --json shape of a completed index run.
type IndexReport struct {
	SnapshotID   string `json:"snapshot_id"`
	RepoRevision string `json:"repo_revision,omitempty"`
	Incremental  bool   `json:"incremental"`
	ChangedFiles int    `json:"changed_files,omitempty"`
	Files        int    `json:"files"`
	Functions    int    `json:"functions"`
	Occurrences  int    `json:"occurrences"`
	ParseErrors  int    `json:"parse_errors"`
	Nodes        int    `json:"nodes"`
	Edges        int    `json:"edges"`
	DurationMs   int64  `json:"duration_ms"`
	ExecutionID  string `json:"execution_id,omitempty"`
}

// runIndex executes the 'index' command: run the ingestion pipeline over
// the current repository, persist the resulting snapshot, and record the
// execution with its verification snapshot in the workspace store.
func runIndex(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	incremental := fs.Bool("incremental", false, "Reuse the previous snapshot; re-ingest only files git reports changed")
	snapshotFlag := fs.String("snapshot", "", "Snapshot id to write (default: derived from the git revision)")
	enrich := fs.Bool("enrich", false, "Run the type-enrichment pass over the finished document")
	debug := fs.Bool("debug", false, "Enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "HTTP listen address for Prometheus metrics (empty to disable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: cie index [options]

Indexes the current repository into an IR snapshot under the data
directory, using configuration from .cie/project.yaml.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  cie index
  cie index --incremental
  cie index --enrich --metrics-addr :9400
`)
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cliErrors.FatalError(err, globals.JSON)
	}
	dataDir, err := cfg.resolveDataDir()
	if err != nil {
		cliErrors.FatalError(cliErrors.NewStorageError("Cannot prepare data directory", err.Error(), "", err), globals.JSON)
	}
	state, err := loadState(dataDir)
	if err != nil {
		cliErrors.FatalError(cliErrors.NewStorageError("Cannot read project state", err.Error(), "", err), globals.JSON)
	}

	logLevel := slog.LevelWarn
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux}
			logger.Info("metrics.http.start", "addr", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Warn("metrics.http.error", "err", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown.signal", "signal", sig.String())
		cancel()
	}()

	cwd, err := os.Getwd()
	if err != nil {
		cliErrors.FatalError(cliErrors.NewInternalError("Cannot resolve working directory", err.Error(), "", err), globals.JSON)
	}

	detector := ingestion.NewDeltaDetector(cwd, logger)
	revision := ""
	if detector.IsGitRepository() {
		if rev, revErr := detector.HeadRevision(); revErr == nil {
			revision = rev
		}
	}

	snapshotID := *snapshotFlag
	if snapshotID == "" {
		if revision != "" {
			snapshotID = "s-" + revision[:12]
		} else {
			snapshotID = "s-" + uuid.NewString()[:8]
		}
	}

	pipeline := ingestion.NewPipeline(ingestion.Config{
		RepoID:        cfg.RepoID,
		SchemaVersion: schemaVersion,
		ExcludeGlobs:  cfg.ExcludeGlobs,
		MaxFileSize:   cfg.MaxFileSize,
		EnableEnrich:  *enrich || cfg.Enrich,
		ReadFile:      func(path string) ([]byte, error) { return os.ReadFile(filepath.Join(cwd, path)) },
	}, logger)
	defer pipeline.Close()

	progress := NewProgressConfig(globals)
	spinner := NewSpinner(progress, "Indexing "+cfg.RepoID)

	start := time.Now()
	var (
		result *ingestion.Result
		delta  *ingestion.GitDelta
		isIncr bool
	)
	if *incremental && state.LatestSnapshotID != "" && state.RepoRevision != "" && revision != "" {
		prev, loadErr := loadSnapshotDoc(dataDir, state.LatestSnapshotID)
		if loadErr != nil {
			cliErrors.FatalError(loadErr, globals.JSON)
		}
		result, delta, err = pipeline.RunIncremental(ctx, prev, cwd, state.RepoRevision, "", snapshotID)
		isIncr = true
	} else {
		result, err = pipeline.Run(ctx, ingestion.RepoSource{Type: "local_path", Value: cwd}, snapshotID)
	}
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		cliErrors.FatalError(cliErrors.NewInternalError("Indexing failed", err.Error(), "Re-run with --debug for stage logs", err), globals.JSON)
	}

	if err := saveSnapshotDoc(dataDir, result.Doc); err != nil {
		cliErrors.FatalError(cliErrors.NewStorageError("Cannot persist snapshot", err.Error(), "Check free disk space under "+dataDir, err), globals.JSON)
	}

	executionID, execErr := recordIndexExecution(dataDir, state, cfg, snapshotID, revision, *debug)
	if execErr != nil {
		logger.Warn("execution.record.error", "err", execErr)
	}

	state.LatestSnapshotID = snapshotID
	state.RepoRevision = revision
	if err := saveState(dataDir, state); err != nil {
		cliErrors.FatalError(cliErrors.NewStorageError("Cannot update project state", err.Error(), "", err), globals.JSON)
	}

	report := IndexReport{
		SnapshotID:   snapshotID,
		RepoRevision: revision,
		Incremental:  isIncr,
		Files:        result.FilesProcessed,
		Functions:    result.FunctionsLowered,
		Occurrences:  result.OccurrencesEmitted,
		ParseErrors:  result.ParseErrors,
		Nodes:        len(result.Doc.Nodes),
		Edges:        len(result.Doc.Edges),
		DurationMs:   time.Since(start).Milliseconds(),
		ExecutionID:  executionID,
	}
	if delta != nil {
		report.ChangedFiles = len(delta.All)
	}

	if globals.JSON {
		if err := output.JSON(report); err != nil {
			cliErrors.FatalError(err, true)
		}
		return
	}

	ui.Successf("Indexed %d files into snapshot %s", report.Files, report.SnapshotID)
	fmt.Printf("  %s %s\n", ui.Label("Nodes:"), ui.CountText(report.Nodes))
	fmt.Printf("  %s %s\n", ui.Label("Edges:"), ui.CountText(report.Edges))
	fmt.Printf("  %s %s\n", ui.Label("Functions:"), ui.CountText(report.Functions))
	fmt.Printf("  %s %s\n", ui.Label("Occurrences:"), ui.CountText(report.Occurrences))
	if report.ParseErrors > 0 {
		ui.Warningf("%d files had parse errors (kept as lossy documents)", report.ParseErrors)
	}
	if isIncr {
		ui.Infof("Incremental run: %d changed files re-ingested", report.ChangedFiles)
	}
	fmt.Printf("  %s %s\n", ui.Label("Data:"), ui.DimText(dataDir))
}

// recordIndexExecution persists the run as a completed Execution bound
// to the project's root workspace, carrying the verification snapshot
// tuple that makes the run reproducible.
func recordIndexExecution(dataDir string, state *projectState, cfg *Config, snapshotID, revision string, debug bool) (string, error) {
	db, err := workspace.Connect(filepath.Join(dataDir, "workspace.db"), debug)
	if err != nil {
		return "", err
	}
	store := workspace.NewStore(db)

	if state.WorkspaceID == "" {
		ws := workspace.NewRootWorkspace(cfg.RepoID, map[string]any{"created_by": "cie index"})
		if err := store.SaveRootWorkspace(ws); err != nil {
			return "", err
		}
		state.WorkspaceID = ws.ID
	}

	snapshot := workspace.VerificationSnapshot{
		EngineVersion:   version,
		RulesetHash:     taint.BuiltinRulesetHash(),
		PoliciesHash:    workspace.ComputeHash([]byte("policies:default")),
		IndexSnapshotID: snapshotID,
		RepoRevision:    revision,
	}
	exec := workspace.NewExecution(state.WorkspaceID, "index", "trace-"+uuid.NewString(), snapshot)
	if err := exec.Transition(workspace.StateRunning); err != nil {
		return "", err
	}
	if err := exec.Transition(workspace.StateCompleted); err != nil {
		return "", err
	}
	if err := store.SaveExecution(exec); err != nil {
		return "", err
	}
	return exec.ID, nil
}
