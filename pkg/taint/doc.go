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

// Package taint compiles declarative, per-language rule atoms into a
// closed set of matchers and executes them against expression entities
// to classify sources, sinks, and sanitizers.
//
// Rules are authored as YAML atoms under rules/<language>.yaml, one file
// per language, and compiled once at startup with Compiler.Compile. The
// executor never inspects pkg/ir directly; it matches against the Entity
// protocol, so the same compiled rule set can in principle run against
// any expression representation that implements it.
package taint
