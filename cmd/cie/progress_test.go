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
	"os"
	"testing"

	"github.com/mattn/go-isatty"
)

func TestNewProgressConfigQuiet(t *testing.T) {
	tests := []struct {
		name    string
		globals GlobalFlags
	}{
		{"quiet flag", GlobalFlags{Quiet: true}},
		{"json implies quiet", GlobalFlags{JSON: true, Quiet: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewProgressConfig(tt.globals)
			if cfg.Enabled {
				t.Error("progress must be disabled in quiet mode")
			}
		})
	}
}

func TestNewProgressConfigTTY(t *testing.T) {
	cfg := NewProgressConfig(GlobalFlags{})
	wantEnabled := isatty.IsTerminal(os.Stderr.Fd())
	if cfg.Enabled != wantEnabled {
		t.Errorf("Enabled = %v, want %v (TTY detection)", cfg.Enabled, wantEnabled)
	}
	if cfg.Writer != os.Stderr {
		t.Error("progress must write to stderr")
	}
}

func TestProgressBarNilWhenDisabled(t *testing.T) {
	cfg := ProgressConfig{Enabled: false, Writer: os.Stderr}
	if NewProgressBar(cfg, 10, "indexing") != nil {
		t.Error("NewProgressBar should return nil when disabled")
	}
	if NewSpinner(cfg, "indexing") != nil {
		t.Error("NewSpinner should return nil when disabled")
	}
}

func TestProgressBarCreatedWhenEnabled(t *testing.T) {
	cfg := ProgressConfig{Enabled: true, Writer: os.Stderr, NoColor: true}
	bar := NewProgressBar(cfg, 5, "files")
	if bar == nil {
		t.Fatal("NewProgressBar returned nil while enabled")
	}
	_ = bar.Add(1)
	_ = bar.Finish()

	spinner := NewSpinner(cfg, "working")
	if spinner == nil {
		t.Fatal("NewSpinner returned nil while enabled")
	}
	_ = spinner.Finish()
}
