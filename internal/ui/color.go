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

// Package ui provides colored terminal output helpers for the cie CLI.
//
// Colors respect the --no-color flag and the NO_COLOR environment
// variable, and fatih/color disables them automatically when stdout is
// not a TTY. Conventions: red for failures, yellow for warnings, green
// for completions, cyan for neutral info and counters, bold for headers
// and labels, dim for paths and secondary detail.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Shared color instances; all helpers below route through these so the
// palette stays consistent across commands.
var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// InitColors applies the --no-color flag globally. Call once in main()
// after flag parsing.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// Success prints a green checkmarked line.
func Success(msg string) {
	_, _ = Green.Println("✓ " + msg)
}

// Successf is Success with formatting.
func Successf(format string, args ...any) {
	_, _ = Green.Printf("✓ "+format+"\n", args...)
}

// Warning prints a yellow warning line.
func Warning(msg string) {
	_, _ = Yellow.Println("⚠ " + msg)
}

// Warningf is Warning with formatting.
func Warningf(format string, args ...any) {
	_, _ = Yellow.Printf("⚠ "+format+"\n", args...)
}

// Error prints a red failure line.
func Error(msg string) {
	_, _ = Red.Println("✗ " + msg)
}

// Errorf is Error with formatting.
func Errorf(format string, args ...any) {
	_, _ = Red.Printf("✗ "+format+"\n", args...)
}

// Info prints a cyan informational line.
func Info(msg string) {
	_, _ = Cyan.Println("ℹ " + msg)
}

// Infof is Info with formatting.
func Infof(format string, args ...any) {
	_, _ = Cyan.Printf("ℹ "+format+"\n", args...)
}

// Header prints a bold title with an underline the same width.
func Header(text string) {
	_, _ = Bold.Println(text)
	fmt.Println(strings.Repeat("=", len(text)))
}

// SubHeader prints a bold section label without an underline.
func SubHeader(text string) {
	_, _ = Bold.Println(text)
}

// Label returns text bold-formatted for inline use, e.g.
// fmt.Printf("%s %s\n", ui.Label("Snapshot:"), snapshotID).
func Label(text string) string {
	return Bold.Sprint(text)
}

// DimText returns text dim-formatted, used for paths and provenance.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// CountText returns a cyan-formatted count for statistics rows.
func CountText(count int) string {
	return Cyan.Sprint(count)
}
