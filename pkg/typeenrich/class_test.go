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

import (
	"testing"

	"github.com/kraklabs/cie/pkg/ir"
)

func TestClassStep(t *testing.T) {
	dc := newDocContext(ir.NewIRDocument("1", "repo", "snap"))
	n := &ir.Node{ID: "class:Greeter", Kind: ir.NodeKindClass, Name: "Greeter", FilePath: "x.py", Span: ir.Span{StartLine: 1, EndLine: 5}}
	res, ok := classStep(dc, n)
	if !ok || res.typeExpr != "type[Greeter]" {
		t.Fatalf("expected type[Greeter], got %+v ok=%v", res, ok)
	}
}

func TestClassStep_DeclinesForFunction(t *testing.T) {
	dc := newDocContext(ir.NewIRDocument("1", "repo", "snap"))
	if _, ok := classStep(dc, namedFunc("run")); ok {
		t.Fatalf("expected the class step to decline for a function node")
	}
}
