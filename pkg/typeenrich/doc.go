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

// Package typeenrich fills in the return type of public-API nodes that
// pkg/semantic left unresolved, walking a fallback chain from the
// cheapest signal (an annotation already captured during parsing) to the
// most expensive (an external language server). It runs after
// pkg/occurrence: enrichment never depends on symbol indexing, but the
// query layer downstream wants both available together.
package typeenrich
