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

package constraint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kraklabs/cie/pkg/analyzer"
	"github.com/kraklabs/cie/pkg/ir"
)

// Stats accumulates pass/fail counts per constraint key across every
// call to Validate on this instance.
type Stats struct {
	TotalValidated int
	Passed         int
	Failed         int
	ByKey          map[string]int
}

// Validator evaluates constraint sets against Targets. It lazily
// detects guards the first time path_sensitivity is asked about a
// function, and caches them per function node ID for the rest of its
// lifetime.
type Validator struct {
	stats    Stats
	guards   map[string][]analyzer.Guard
	detector *analyzer.GuardDetector
}

func NewValidator() *Validator {
	return &Validator{
		stats:    Stats{ByKey: map[string]int{}},
		guards:   map[string][]analyzer.Guard{},
		detector: analyzer.NewGuardDetector(),
	}
}

// Validate checks every constraint in constraints against target,
// short-circuiting on the first failure like the source implementation.
func (v *Validator) Validate(doc *ir.IRDocument, fn *ir.Node, target Target, constraints map[string]any) (bool, error) {
	if len(constraints) == 0 {
		return true, nil
	}
	v.stats.TotalValidated++
	for key, value := range constraints {
		v.stats.ByKey[key]++
		ok, err := v.validateOne(doc, fn, target, key, value)
		if err != nil {
			v.stats.Failed++
			return false, err
		}
		if !ok {
			v.stats.Failed++
			return false, nil
		}
	}
	v.stats.Passed++
	return true, nil
}

func (v *Validator) validateOne(doc *ir.IRDocument, fn *ir.Node, target Target, key string, value any) (bool, error) {
	switch key {
	case "arg_type":
		return v.validateArgType(target, value)
	case "return_type":
		return v.validateReturnType(target, value)
	case "arg_source", "value_source":
		return v.validateSource(target, value)
	case "flow_sensitivity":
		return true, nil // advisory only, like the source implementation
	case "path_sensitivity":
		return v.validatePathSensitivity(doc, fn, target, value)
	case "context_sensitive":
		return true, nil // advisory only
	case "scope":
		return v.validateScope(target, value)
	case "value_pattern":
		return v.validatePattern(target, value, true)
	case "name_pattern":
		return v.validatePattern(target, value, false)
	default:
		return false, fmt.Errorf("constraint: unknown constraint key %q", key)
	}
}

func (v *Validator) validateArgType(target Target, value any) (bool, error) {
	s, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("constraint: arg_type expects a string value")
	}
	switch s {
	case "not_const":
		return !target.IsConstant(), nil
	case "string":
		return containsAny(target.TypeName(), "str", "string"), nil
	case "numeric":
		return containsAny(target.TypeName(), "int", "float", "number", "decimal"), nil
	case "collection":
		return containsAny(target.TypeName(), "list", "dict", "set", "tuple", "array", "collection", "slice", "map"), nil
	case "callable":
		return containsAny(target.TypeName(), "function", "callable", "method", "lambda", "func"), nil
	default:
		return false, nil
	}
}

func (v *Validator) validateReturnType(target Target, value any) (bool, error) {
	s, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("constraint: return_type expects a string value")
	}
	t := target.TypeName()
	if t == "" {
		return false, nil
	}
	return strings.Contains(t, s) || t == s, nil
}

func (v *Validator) validateSource(target Target, value any) (bool, error) {
	s, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("constraint: arg_source/value_source expects a string value")
	}
	switch s {
	case "external":
		return looksExternal(target.Name()), nil
	case "internal":
		return !looksExternal(target.Name()), nil
	case "parameter":
		return target.FromParameter(), nil
	case "global":
		return target.IsGlobal(), nil
	default:
		return false, nil
	}
}

func (v *Validator) validatePathSensitivity(doc *ir.IRDocument, fn *ir.Node, target Target, value any) (bool, error) {
	required, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("constraint: path_sensitivity expects a bool value")
	}
	if !required {
		return true, nil
	}
	if fn == nil || target.BlockID() == "" || target.Name() == "" {
		return true, nil // no guard info to check against; treated as satisfied like the source validator
	}
	tree, ok := doc.DominatorTreeFor(fn.ID)
	if !ok {
		return true, nil
	}
	guards, ok := v.guards[fn.ID]
	if !ok {
		guards = v.detector.DetectInDocument(doc, fn)
		v.guards[fn.ID] = guards
	}
	return v.detector.IsGuardProtected(guards, tree, target.BlockID(), target.Name()), nil
}

func (v *Validator) validateScope(target Target, value any) (bool, error) {
	s, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("constraint: scope expects a string value")
	}
	scope := target.Scope()
	if scope == "" {
		return false, nil
	}
	return scope == s, nil
}

func (v *Validator) validatePattern(target Target, value any, valueNotName bool) (bool, error) {
	pattern, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("constraint: pattern constraint expects a string regex")
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false, fmt.Errorf("constraint: invalid regex %q: %w", pattern, err)
	}
	if valueNotName {
		if constVal, ok := target.ConstantValue(); ok {
			return re.MatchString(constVal), nil
		}
	}
	return re.MatchString(target.Name()), nil
}

func containsAny(haystack string, needles ...string) bool {
	lower := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// Stats returns a copy of the accumulated validation statistics.
func (v *Validator) Stats() Stats {
	byKey := make(map[string]int, len(v.stats.ByKey))
	for k, c := range v.stats.ByKey {
		byKey[k] = c
	}
	return Stats{TotalValidated: v.stats.TotalValidated, Passed: v.stats.Passed, Failed: v.stats.Failed, ByKey: byKey}
}

// ResetStats clears the accumulated statistics without affecting the
// guard cache.
func (v *Validator) ResetStats() {
	v.stats = Stats{ByKey: map[string]int{}}
}
