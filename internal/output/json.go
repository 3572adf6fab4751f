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

// Package output handles JSON encoding for the cie CLI's machine-readable
// output mode. Data results go to stdout; errors go to stderr in the
// engine's error-envelope shape so a consumer driving the CLI with --json
// sees the same wire format on both streams the RPC boundary uses.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kraklabs/cie/internal/errors"
)

// JSON writes data as pretty-printed JSON to stdout, the standard format
// for --json output.
func JSON(data any) error {
	return JSONTo(os.Stdout, data)
}

// JSONTo writes pretty-printed JSON to w.
func JSONTo(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// JSONCompact writes data as single-line JSON to stdout, for streaming
// consumers.
func JSONCompact(data any) error {
	return JSONCompactTo(os.Stdout, data)
}

// JSONCompactTo writes single-line JSON to w.
func JSONCompactTo(w io.Writer, data any) error {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// JSONError writes err to stderr as an error envelope. A *UserError
// keeps its own code and details; anything else degrades to
// err_common_internal with just the message.
func JSONError(err error) error {
	return JSONErrorTo(os.Stderr, err)
}

// JSONErrorTo writes the error envelope to w.
func JSONErrorTo(w io.Writer, err error) error {
	var env errors.Envelope
	if ue, ok := err.(*errors.UserError); ok {
		env = ue.Envelope("")
	} else {
		env = errors.Envelope{
			Code:    errors.CodeInternal,
			Message: err.Error(),
			Details: map[string]any{},
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(env); encErr != nil {
		return fmt.Errorf("encode error envelope: %w", encErr)
	}
	return nil
}
