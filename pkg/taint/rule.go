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

package taint

import "regexp"

// EffectKind classifies what a matched rule says about the entity it
// matched.
type EffectKind string

const (
	EffectSource    EffectKind = "source"
	EffectSink      EffectKind = "sink"
	EffectSanitizer EffectKind = "sanitizer"
)

// ArgConstraint restricts a rule to calls whose argument at Index is (or
// is not) a literal of the given sort. A constraint with neither
// RequireConstant nor RequireStringLit set places no restriction on the
// argument at Index.
type ArgConstraint struct {
	Index            int  `yaml:"index"`
	RequireConstant  bool `yaml:"require_constant"`
	RequireStringLit bool `yaml:"require_string_literal"`
}

// RuleAtom is the YAML-decodable, uncompiled form of a rule. One atom
// file holds every atom for a single language.
type RuleAtom struct {
	ID               string          `yaml:"id"`
	Language         string          `yaml:"language"`
	EffectKind       EffectKind      `yaml:"effect_kind"`
	KindFilter       []string        `yaml:"kind_filter"`
	BaseTypePattern  string          `yaml:"base_type_pattern"`
	MethodPattern    string          `yaml:"method_pattern"`
	QualifiedPattern string          `yaml:"qualified_pattern"`
	ArgConstraints   []ArgConstraint `yaml:"arg_constraints"`
	Confidence       float64         `yaml:"confidence"`
}

// Rule is the compiled, immutable form of a RuleAtom: every pattern
// field is a ready-to-use regexp, never recompiled per match.
type Rule struct {
	ID               string
	Language         string
	EffectKind       EffectKind
	KindFilter       map[string]bool
	BaseTypePattern  *regexp.Regexp
	MethodPattern    *regexp.Regexp
	QualifiedPattern *regexp.Regexp
	ArgConstraints   []ArgConstraint
	Confidence       float64
}

// Matches reports whether the rule's structural filters accept ent,
// ignoring confidence (the executor applies the caller's threshold
// separately so the same compiled rule set can serve callers with
// different sensitivity requirements).
func (r *Rule) Matches(ent Entity) bool {
	if len(r.KindFilter) > 0 && !r.KindFilter[ent.Kind()] {
		return false
	}
	if r.BaseTypePattern != nil {
		base, ok := ent.BaseType()
		if !ok || !r.BaseTypePattern.MatchString(base) {
			return false
		}
	}
	if r.MethodPattern != nil {
		call, ok := ent.Call()
		if !ok {
			return false
		}
		if !r.MethodPattern.MatchString(call) {
			return false
		}
	}
	if r.QualifiedPattern != nil {
		qualified, ok := ent.QualifiedCall()
		if !ok || !r.QualifiedPattern.MatchString(qualified) {
			return false
		}
	}
	for _, c := range r.ArgConstraints {
		if c.RequireConstant && !ent.IsConstant(c.Index) {
			return false
		}
		if c.RequireStringLit && !ent.IsStringLiteral(c.Index) {
			return false
		}
	}
	return true
}
