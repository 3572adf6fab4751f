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

package ingestion

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsIngestion holds Prometheus metrics for the ingestion pipeline.
type metricsIngestion struct {
	once sync.Once

	// Delta
	deltaAdded    prometheus.Counter
	deltaModified prometheus.Counter
	deltaDeleted  prometheus.Counter
	deltaRenamed  prometheus.Counter

	// Delta (post-filter)
	deltaFilteredAdded    prometheus.Counter
	deltaFilteredModified prometheus.Counter
	deltaFilteredDeleted  prometheus.Counter
	deltaFilteredRenamed  prometheus.Counter

	// Pipeline stages
	filesParsed        prometheus.Counter
	parseErrors        prometheus.Counter
	functionsLowered   prometheus.Counter
	occurrencesEmitted prometheus.Counter
	nodesEnriched      prometheus.Counter
	nodesUnresolved    prometheus.Counter

	// Durations
	deltaDuration      prometheus.Histogram
	parseDuration      prometheus.Histogram
	structuralDuration prometheus.Histogram
	semanticDuration   prometheus.Histogram
	enrichDuration     prometheus.Histogram
	totalDuration      prometheus.Histogram
}

var ingMetrics metricsIngestion

func (m *metricsIngestion) init() {
	m.once.Do(func() {
		m.deltaAdded = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_delta_added_total", Help: "Files added since the last indexed revision"})
		m.deltaModified = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_delta_modified_total", Help: "Files modified since the last indexed revision"})
		m.deltaDeleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_delta_deleted_total", Help: "Files deleted since the last indexed revision"})
		m.deltaRenamed = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_delta_renamed_total", Help: "Renames detected since the last indexed revision"})

		m.deltaFilteredAdded = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_delta_filtered_added_total", Help: "Added files surviving exclude globs and size limits"})
		m.deltaFilteredModified = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_delta_filtered_modified_total", Help: "Modified files surviving exclude globs and size limits"})
		m.deltaFilteredDeleted = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_delta_filtered_deleted_total", Help: "Deleted files surviving exclude globs"})
		m.deltaFilteredRenamed = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_delta_filtered_renamed_total", Help: "Renamed files surviving exclude globs and size limits"})

		m.filesParsed = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_files_parsed_total", Help: "Files successfully parsed into an AST"})
		m.parseErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_parse_errors_total", Help: "Files that failed to parse or produced tree-sitter error nodes"})
		m.functionsLowered = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_functions_lowered_total", Help: "Functions run through CFG, DFG and signature lowering"})
		m.occurrencesEmitted = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_occurrences_emitted_total", Help: "Occurrence records emitted across all processed files"})
		m.nodesEnriched = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_nodes_enriched_total", Help: "Public API candidate nodes resolved to a type by any enrichment step"})
		m.nodesUnresolved = prometheus.NewCounter(prometheus.CounterOpts{Name: "cie_ing_nodes_unresolved_total", Help: "Public API candidate nodes no enrichment step could resolve"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
		m.deltaDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_ing_delta_seconds", Help: "Delta detection duration", Buckets: buckets})
		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_ing_parse_seconds", Help: "Parsing duration", Buckets: buckets})
		m.structuralDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_ing_structural_seconds", Help: "Structural IR generation duration", Buckets: buckets})
		m.semanticDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_ing_semantic_seconds", Help: "CFG, DFG and signature lowering duration", Buckets: buckets})
		m.enrichDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_ing_enrich_seconds", Help: "Type enrichment duration", Buckets: buckets})
		m.totalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "cie_ing_total_seconds", Help: "Total pipeline run duration", Buckets: buckets})

		prometheus.MustRegister(
			m.deltaAdded, m.deltaModified, m.deltaDeleted, m.deltaRenamed,
			m.deltaFilteredAdded, m.deltaFilteredModified, m.deltaFilteredDeleted, m.deltaFilteredRenamed,
			m.filesParsed, m.parseErrors, m.functionsLowered, m.occurrencesEmitted,
			m.nodesEnriched, m.nodesUnresolved,
			m.deltaDuration, m.parseDuration, m.structuralDuration, m.semanticDuration, m.enrichDuration, m.totalDuration,
		)
	})
}
