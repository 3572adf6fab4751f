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

package typeenrich

import "context"

// LSPClient is the narrow contract the enricher needs from an external
// language server: a hover lookup at a name's source position. The
// actual process (gopls, pyright, tsserver) is an external collaborator
// never started by this package; callers that want LSP fallback supply
// their own implementation.
type LSPClient interface {
	// Hover returns the type text a language server reports for the
	// identifier at (line, col) in filePath, or ok=false if the server
	// has nothing to offer (unresolvable symbol, file outside its
	// workspace, timeout already accounted for by the caller's context).
	Hover(ctx context.Context, filePath string, line, col int) (typeExpr string, ok bool, err error)
}

// NullLSPClient is the default LSPClient: it never resolves anything.
// Used when no language server is configured, so step 7 of the fallback
// chain degrades to a no-op rather than requiring a nil check at every
// call site.
type NullLSPClient struct{}

func (NullLSPClient) Hover(ctx context.Context, filePath string, line, col int) (string, bool, error) {
	return "", false, nil
}
