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

package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	underlying := fmt.Errorf("disk full")

	tests := []struct {
		name     string
		err      *UserError
		wantExit int
		wantCode string
		wantErr  error
	}{
		{"config", NewConfigError("bad config", "missing file", "run cie init", underlying), ExitConfig, CodeInvalidArgument, underlying},
		{"storage", NewStorageError("cannot open index", "file locked", "close other instances", underlying), ExitStorage, CodeInternal, underlying},
		{"input", NewInputError("bad spec", "intent missing", "set intent"), ExitInput, CodeInvalidArgument, nil},
		{"not found", NewNotFoundError("no snapshot", "nothing indexed", "run cie index"), ExitNotFound, CodeNotFound, nil},
		{"internal", NewInternalError("nil document", "indexer returned nil", "report this bug", underlying), ExitInternal, CodeInternal, underlying},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.ExitCode != tt.wantExit {
				t.Errorf("ExitCode = %d, want %d", tt.err.ExitCode, tt.wantExit)
			}
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.Err != tt.wantErr {
				t.Errorf("Err = %v, want %v", tt.err.Err, tt.wantErr)
			}
		})
	}
}

func TestErrorAndUnwrap(t *testing.T) {
	underlying := fmt.Errorf("root cause")
	ue := NewInternalError("top message", "", "", underlying)

	if got := ue.Error(); got != "top message: root cause" {
		t.Errorf("Error() = %q", got)
	}
	if !stderrors.Is(ue, underlying) {
		t.Error("errors.Is should see the wrapped error")
	}

	bare := NewInputError("just a message", "", "")
	if got := bare.Error(); got != "just a message" {
		t.Errorf("Error() without wrap = %q", got)
	}
}

func TestFormatSections(t *testing.T) {
	ue := NewConfigError("cannot load config", "file missing", "run cie init", nil)
	out := ue.Format(true)

	for _, want := range []string{"Error: cannot load config", "Cause: file missing", "Fix:   run cie init"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format output missing %q:\n%s", want, out)
		}
	}

	sparse := NewInputError("only a message", "", "")
	out = sparse.Format(true)
	if strings.Contains(out, "Cause:") || strings.Contains(out, "Fix:") {
		t.Errorf("empty sections should be omitted:\n%s", out)
	}
}

func TestEnvelope(t *testing.T) {
	ue := NewInputError("spec rejected", "intent must be analyze", "set intent to analyze").
		WithDetails(map[string]any{"hint_schema": "AnalyzeSpec"})
	env := ue.Envelope("trace-1")

	if env.Code != CodeInvalidArgument {
		t.Errorf("Code = %q", env.Code)
	}
	if env.Message != "spec rejected" {
		t.Errorf("Message = %q", env.Message)
	}
	if env.TraceID != "trace-1" {
		t.Errorf("TraceID = %q", env.TraceID)
	}
	if env.Details["hint_schema"] != "AnalyzeSpec" {
		t.Errorf("Details lost: %v", env.Details)
	}
	if env.Details["cause"] != "intent must be analyze" || env.Details["fix"] != "set intent to analyze" {
		t.Errorf("cause/fix not folded into details: %v", env.Details)
	}
}

func TestEnvelopeDefaultsCode(t *testing.T) {
	ue := &UserError{Message: "raw"}
	if got := ue.Envelope("").Code; got != CodeInternal {
		t.Errorf("empty code should default to %q, got %q", CodeInternal, got)
	}
}
