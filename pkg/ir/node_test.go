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

package ir

import "testing"

func TestIsPublicAPICandidate(t *testing.T) {
	cases := []struct {
		name string
		n    Node
		want bool
	}{
		{
			name: "eligible function",
			n:    Node{Kind: NodeKindFunction, Name: "DoThing", FilePath: "pkg/foo.go", Span: Span{StartLine: 1, EndLine: 2}},
			want: true,
		},
		{
			name: "underscore prefixed is private",
			n:    Node{Kind: NodeKindFunction, Name: "_helper", FilePath: "pkg/foo.go", Span: Span{StartLine: 1, EndLine: 2}},
			want: false,
		},
		{
			name: "dunder is allowed",
			n:    Node{Kind: NodeKindFunction, Name: "__init__", FilePath: "pkg/foo.py", Span: Span{StartLine: 1, EndLine: 2}},
			want: true,
		},
		{
			name: "variable kind not eligible",
			n:    Node{Kind: NodeKindVariable, Name: "x", FilePath: "pkg/foo.go", Span: Span{StartLine: 1, EndLine: 2}},
			want: false,
		},
		{
			name: "synthetic file excluded",
			n:    Node{Kind: NodeKindFunction, Name: "DoThing", FilePath: "<synthetic>", Span: Span{StartLine: 1, EndLine: 2}},
			want: false,
		},
		{
			name: "zero span excluded",
			n:    Node{Kind: NodeKindFunction, Name: "DoThing", FilePath: "pkg/foo.go"},
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.n.IsPublicAPICandidate(); got != tc.want {
				t.Errorf("IsPublicAPICandidate() = %v, want %v", got, tc.want)
			}
		})
	}
}
