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

// Package workspace implements the deterministic execution substrate:
// immutable workspace revisions built from overlay patchsets,
// verification snapshots that gate whether two executions must produce
// byte-equal findings, execution records wrapping a single run, and a
// transactional shadow filesystem overlay for staging patch content
// before it is committed to a workspace.
package workspace
