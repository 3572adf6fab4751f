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

// Package analyzer orchestrates the advanced analyses that run over a
// completed IRDocument: program dependence graph construction, taint
// propagation (basic, path-sensitive, field-sensitive), backward/forward
// program slicing, and an optional alias registry. It reads the CFG/DFG
// layers pkg/semantic produced and appends PDG and taint-finding layers;
// it never mutates the layers it reads.
package analyzer
