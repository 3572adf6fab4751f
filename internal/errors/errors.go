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

// Package errors provides structured error handling for the cie CLI.
//
// UserError carries three levels of information for a human (what went
// wrong, why, how to fix it) plus the machine-readable code and details
// the engine's error envelope format requires, so one error value can be
// rendered either as colored terminal output or as the
// {code, message, details, trace_id} JSON shape consumers of the RPC
// boundary expect.
//
// Exit codes follow Unix conventions:
//   - ExitSuccess (0): successful execution
//   - ExitConfig (1): configuration errors
//   - ExitStorage (2): index/workspace storage errors
//   - ExitInput (4): invalid user input (bad arguments, invalid specs)
//   - ExitNotFound (6): resource not found (snapshot, node, workspace)
//   - ExitInternal (10): internal errors (bugs, panics)
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for the error categories the CLI distinguishes.
const (
	ExitSuccess  = 0
	ExitConfig   = 1
	ExitStorage  = 2
	ExitInput    = 4
	ExitNotFound = 6
	// ExitInternal signals "this is a bug that should be reported".
	ExitInternal = 10
)

// Envelope error codes, the err_<domain>_<type> identifiers carried on
// the wire. Spec validation failures are reported as input errors with
// CodeInvalidArgument; the failing spec's own code goes into the error's
// details under "error_code".
const (
	CodeInvalidArgument = "err_common_invalid_argument"
	CodeNotFound        = "err_common_not_found"
	CodeInternal        = "err_common_internal"
)

// UserError is an error with structured context for both humans and
// machines.
type UserError struct {
	// Message describes what went wrong.
	Message string

	// Cause explains why it happened.
	Cause string

	// Fix is an actionable suggestion.
	Fix string

	// Code is the envelope error code (err_<domain>_<type>).
	Code string

	// Details carries machine-readable context for the envelope, such as
	// a failing spec's hint_schema and suggested_fixes.
	Details map[string]any

	// ExitCode is used when the CLI exits due to this error.
	ExitCode int

	// Err is the wrapped underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *UserError) Unwrap() error {
	return e.Err
}

// WithDetails attaches machine-readable context and returns the same
// error for chaining.
func (e *UserError) WithDetails(details map[string]any) *UserError {
	e.Details = details
	return e
}

// NewConfigError builds a configuration error (missing or malformed
// .cie/project.yaml, bad flag combinations resolved from config).
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, Code: CodeInvalidArgument, ExitCode: ExitConfig, Err: err}
}

// NewStorageError builds an index/workspace storage error (unreadable
// snapshot file, locked workspace database, failed migration).
func NewStorageError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, Code: CodeInternal, ExitCode: ExitStorage, Err: err}
}

// NewInputError builds an invalid-input error (bad arguments, a spec
// that failed validation). Input errors do not wrap an underlying error;
// the validation failure itself is the whole story.
func NewInputError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, Code: CodeInvalidArgument, ExitCode: ExitInput}
}

// NewNotFoundError builds a resource-not-found error (no snapshot
// indexed yet, unknown node ID, unknown workspace).
func NewNotFoundError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, Code: CodeNotFound, ExitCode: ExitNotFound}
}

// NewInternalError builds an internal error for unexpected states that
// indicate a bug.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, Code: CodeInternal, ExitCode: ExitInternal, Err: err}
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format renders the error for terminal display: Error in bold red,
// Cause in yellow, Fix in green, empty sections omitted. Color is
// suppressed when noColor is set or NO_COLOR is present in the
// environment. The global color state is restored before returning.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")
	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}
	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}
	return out.String()
}

// Envelope is the wire-level error shape returned at the RPC boundary.
type Envelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
	TraceID string         `json:"trace_id,omitempty"`
}

// Envelope converts the error into the wire shape. Details is never nil
// in the output; cause and fix are folded in so machine consumers see
// the same context a terminal user would.
func (e *UserError) Envelope(traceID string) Envelope {
	details := make(map[string]any, len(e.Details)+2)
	for k, v := range e.Details {
		details[k] = v
	}
	if e.Cause != "" {
		details["cause"] = e.Cause
	}
	if e.Fix != "" {
		details["fix"] = e.Fix
	}
	code := e.Code
	if code == "" {
		code = CodeInternal
	}
	return Envelope{Code: code, Message: e.Message, Details: details, TraceID: traceID}
}

// FatalError prints the error and exits with its exit code. In JSON mode
// the envelope shape goes to stderr; otherwise Format's colored output
// does. Non-UserError values exit ExitInternal. Never returns.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}
	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			// Encoding failure is ignored; the exit code still carries the
			// outcome.
			_ = enc.Encode(ue.Envelope(""))
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
