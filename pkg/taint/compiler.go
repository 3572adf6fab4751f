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

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// atomFile is the top-level shape of a rules/<language>.yaml file.
type atomFile struct {
	Atoms []RuleAtom `yaml:"atoms"`
}

// Compiler turns RuleAtoms into closed, ready-to-match Rules.
type Compiler struct{}

func NewCompiler() *Compiler { return &Compiler{} }

// Compile validates and compiles every atom, failing closed on the
// first invalid one rather than silently dropping it.
func (c *Compiler) Compile(atoms []RuleAtom) ([]Rule, error) {
	rules := make([]Rule, 0, len(atoms))
	for _, a := range atoms {
		r, err := c.compileOne(a)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", a.ID, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func (c *Compiler) compileOne(a RuleAtom) (Rule, error) {
	if a.ID == "" {
		return Rule{}, fmt.Errorf("rule atom missing id")
	}
	switch a.EffectKind {
	case EffectSource, EffectSink, EffectSanitizer:
	default:
		return Rule{}, fmt.Errorf("unknown effect_kind %q", a.EffectKind)
	}
	confidence := a.Confidence
	if confidence == 0 {
		confidence = 1.0
	}
	if confidence < 0 || confidence > 1 {
		return Rule{}, fmt.Errorf("confidence %v out of [0,1]", confidence)
	}

	r := Rule{
		ID:             a.ID,
		Language:       a.Language,
		EffectKind:     a.EffectKind,
		ArgConstraints: a.ArgConstraints,
		Confidence:     confidence,
	}
	if len(a.KindFilter) > 0 {
		r.KindFilter = make(map[string]bool, len(a.KindFilter))
		for _, k := range a.KindFilter {
			r.KindFilter[k] = true
		}
	}
	var err error
	if r.BaseTypePattern, err = compilePattern(a.BaseTypePattern); err != nil {
		return Rule{}, fmt.Errorf("base_type_pattern: %w", err)
	}
	if r.MethodPattern, err = compilePattern(a.MethodPattern); err != nil {
		return Rule{}, fmt.Errorf("method_pattern: %w", err)
	}
	if r.QualifiedPattern, err = compilePattern(a.QualifiedPattern); err != nil {
		return Rule{}, fmt.Errorf("qualified_pattern: %w", err)
	}
	return r, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}

// CompileFile reads and compiles one language's rule atom file.
func (c *Compiler) CompileFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file %s: %w", path, err)
	}
	var file atomFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule file %s: %w", path, err)
	}
	return c.Compile(file.Atoms)
}
