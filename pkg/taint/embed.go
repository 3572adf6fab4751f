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
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// The shipped rule atoms are embedded so a deployed binary carries its
// ruleset with it: the verification snapshot's ruleset hash must mean
// the same thing no matter which working directory the engine runs in.
//
//go:embed rules/*.yaml
var builtinRules embed.FS

// BuiltinLanguages lists the languages a rule atom file ships for,
// sorted.
func BuiltinLanguages() []string {
	entries, err := builtinRules.ReadDir("rules")
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(langs)
	return langs
}

// CompileBuiltin compiles the embedded atom file for language.
func (c *Compiler) CompileBuiltin(language string) ([]Rule, error) {
	data, err := builtinRules.ReadFile("rules/" + language + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no builtin rules for language %q: %w", language, err)
	}
	var file atomFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse builtin rules for %q: %w", language, err)
	}
	return c.Compile(file.Atoms)
}

// BuiltinRulesetHash digests every embedded rule file in name order into
// the short sha256:<12 hex> form verification snapshots carry.
func BuiltinRulesetHash() string {
	entries, err := builtinRules.ReadDir("rules")
	if err != nil {
		return "sha256:000000000000"
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		data, err := builtinRules.ReadFile("rules/" + name)
		if err != nil {
			continue
		}
		h.Write([]byte(name))
		h.Write(data)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))[:12]
}
