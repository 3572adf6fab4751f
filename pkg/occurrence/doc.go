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

// Package occurrence builds SCIP-style symbol descriptors, indexes
// occurrences by symbol/file/role, and bridges type expressions across
// languages for polyglot repositories. It runs after pkg/semantic: every
// occurrence it emits references a Node or Expression that layer already
// produced.
package occurrence
