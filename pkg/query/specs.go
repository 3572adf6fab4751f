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

import "fmt"

// ValidationError is the structured failure a malformed spec returns:
// a stable code an LLM caller can branch on, the JSON schema fragment
// it violated, and concrete suggested fixes.
type ValidationError struct {
	Code          string
	HintSchema    string
	SuggestedFixes []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("query: %s", e.Code)
}

func invalidSpec(code, hintSchema string, fixes ...string) error {
	return &ValidationError{Code: code, HintSchema: hintSchema, SuggestedFixes: fixes}
}

// Scope narrows a spec to a repo snapshot and, optionally, a subset of
// paths and languages.
type Scope struct {
	RepoID     string
	SnapshotID string
	Paths      []string
	Languages  []string
}

func validateScope(s Scope) error {
	if s.RepoID == "" {
		return invalidSpec("scope.repo_id.required", "Scope.repo_id", "set repo_id to the target repository id")
	}
	if s.SnapshotID == "" {
		return invalidSpec("scope.snapshot_id.required", "Scope.snapshot_id", "set snapshot_id to a resolved snapshot id")
	}
	return nil
}

// Limits bounds how much work a spec may do.
type Limits struct {
	MaxPaths  int
	TimeoutMs int
	MaxTokens int
}

func validateLimits(l Limits) error {
	if l.MaxPaths < 0 {
		return invalidSpec("limits.max_paths.negative", "Limits.max_paths", "set max_paths to a non-negative integer")
	}
	if l.TimeoutMs <= 0 {
		return invalidSpec("limits.timeout_ms.invalid", "Limits.timeout_ms", "set timeout_ms to a positive integer")
	}
	if l.MaxTokens < 0 {
		return invalidSpec("limits.max_tokens.negative", "Limits.max_tokens", "set max_tokens to a non-negative integer")
	}
	return nil
}

// RetrieveSpec asks for raw IR entities matching a query (lookups,
// listings, graph walks) with no interpretive analysis performed.
type RetrieveSpec struct {
	Intent     string
	TemplateID string
	Scope      Scope
	Params     map[string]any
	Limits     Limits
}

// Validate runs strict field-presence and range checks, returning the
// first violation found as a *ValidationError.
func (s RetrieveSpec) Validate() error {
	if s.Intent == "" {
		return invalidSpec("retrieve.intent.required", "RetrieveSpec.intent", "set intent to a non-empty string describing the retrieval")
	}
	if s.TemplateID == "" {
		return invalidSpec("retrieve.template_id.required", "RetrieveSpec.template_id", "set template_id to a registered retrieval template")
	}
	if err := validateScope(s.Scope); err != nil {
		return err
	}
	return validateLimits(s.Limits)
}

// AnalyzeSpec asks for an interpretive analysis (taint, cost, pattern
// match) whose output is a ResultEnvelope.
type AnalyzeSpec struct {
	Intent     string
	TemplateID string
	Scope      Scope
	Params     map[string]any
	Limits     Limits
}

// Validate runs the same strict checks as RetrieveSpec; the shapes
// diverge only in what the template_id namespace resolves to.
func (s AnalyzeSpec) Validate() error {
	if s.Intent == "" {
		return invalidSpec("analyze.intent.required", "AnalyzeSpec.intent", "set intent to a non-empty string describing the analysis")
	}
	if s.TemplateID == "" {
		return invalidSpec("analyze.template_id.required", "AnalyzeSpec.template_id", "set template_id to a registered analysis template")
	}
	if err := validateScope(s.Scope); err != nil {
		return err
	}
	return validateLimits(s.Limits)
}

// EditSpec asks for a proposed source transformation scoped to a
// workspace revision; it never mutates the IR document directly.
type EditSpec struct {
	Intent     string
	TemplateID string
	Scope      Scope
	Params     map[string]any
	Limits     Limits
}

// Validate runs the same strict checks as RetrieveSpec/AnalyzeSpec.
func (s EditSpec) Validate() error {
	if s.Intent == "" {
		return invalidSpec("edit.intent.required", "EditSpec.intent", "set intent to a non-empty string describing the edit")
	}
	if s.TemplateID == "" {
		return invalidSpec("edit.template_id.required", "EditSpec.template_id", "set template_id to a registered edit template")
	}
	if err := validateScope(s.Scope); err != nil {
		return err
	}
	return validateLimits(s.Limits)
}
