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

// TypeOrigin records where a node's resolved type came from, the
// fallback chain the enricher (pkg/typeenrich) walks through in order.
type TypeOrigin string

const (
	TypeOriginAnnotation TypeOrigin = "annotation"
	TypeOriginInference  TypeOrigin = "inference"
	TypeOriginLSP        TypeOrigin = "lsp"
	TypeOriginStub       TypeOrigin = "stub"
	TypeOriginHeuristic  TypeOrigin = "heuristic"
	TypeOriginCrossLang  TypeOrigin = "cross_language_bridge"
	TypeOriginUnresolved TypeOrigin = "unresolved"
)

// TypeEntity is the resolved type attached to a node by the enricher.
type TypeEntity struct {
	NodeID    string     `json:"node_id"`
	TypeExpr  string     `json:"type_expr"`
	Origin    TypeOrigin `json:"origin"`
	Confidence float64   `json:"confidence"`
	// BridgedFromLanguage is set when Origin is TypeOriginCrossLang: the
	// source language whose generic/type syntax was mapped into TypeExpr.
	BridgedFromLanguage string `json:"bridged_from_language,omitempty"`
	LocalSeq            int64  `json:"local_seq"`
}

// SignatureParam is one parameter slot of a SignatureEntity.
type SignatureParam struct {
	Name       string  `json:"name"`
	TypeExpr   string  `json:"type_expr,omitempty"`
	HasDefault bool    `json:"has_default"`
	Variadic   bool    `json:"variadic"`
	Confidence float64 `json:"confidence"`
}

// SignatureEntity is the resolved call signature of a function/method
// node, built by pkg/semantic from the structural parameter list plus
// enrichment-layer type information.
type SignatureEntity struct {
	NodeID       string           `json:"node_id"`
	Params       []SignatureParam `json:"params"`
	ReturnType   string           `json:"return_type,omitempty"`
	IsAsync      bool             `json:"is_async"`
	IsGenerator  bool             `json:"is_generator"`
	ThrowsTypes  []string         `json:"throws_types,omitempty"`
	LocalSeq     int64            `json:"local_seq"`
}

// TemplateSlotKind enumerates the substitution-point categories tracked
// for template/format-string instrumentation (e.g. Jinja2, f-strings,
// JSX interpolation) feeding the taint analyzer's source detection.
type TemplateSlotKind string

const (
	TemplateSlotInterpolation TemplateSlotKind = "interpolation"
	TemplateSlotLoopVar       TemplateSlotKind = "loop_var"
	TemplateSlotFilterArg     TemplateSlotKind = "filter_arg"
	TemplateSlotAttribute     TemplateSlotKind = "attribute"
)

// TemplateSlot is one substitution point inside a template/format string
// literal, associated with the expression that produced the string.
type TemplateSlot struct {
	ID             string           `json:"id"`
	ExpressionID   string           `json:"expression_id"`
	Kind           TemplateSlotKind `json:"kind"`
	RawText        string           `json:"raw_text"`
	Span           Span             `json:"span"`
	AutoEscaped    bool             `json:"auto_escaped"`
	LocalSeq       int64            `json:"local_seq"`
}

// Diagnostic is a non-fatal issue surfaced during any pipeline stage
// (parse recovery, unresolved import, enrichment fallback exhaustion),
// collected per-document rather than raised as a Go error so a partial
// IRDocument can still be produced.
type Diagnostic struct {
	Stage    string `json:"stage"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	FilePath string `json:"file_path,omitempty"`
	Span     *Span  `json:"span,omitempty"`
}

// Package groups the files and top-level nodes of one logical package or
// module unit, the granularity at which cost/constraint summaries roll
// up for the query engine's package-level views.
type Package struct {
	Name      string   `json:"name"`
	Language  string   `json:"language"`
	FilePaths []string `json:"file_paths"`
	RootPath  string   `json:"root_path"`
}
