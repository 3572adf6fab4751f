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

package structural

import (
	"testing"

	"github.com/kraklabs/cie/pkg/ir"
)

const protoFixture = `syntax = "proto3";

message HelloRequest {
  string name = 1;
}

message HelloResponse {
  string message = 1;
}

service Greeter {
  rpc SayHello (HelloRequest) returns (HelloResponse);
}
`

func TestProtoGenerator_EmitStructuralIR(t *testing.T) {
	gen := &ProtoGenerator{}
	doc := ir.NewIRDocument("1", "repo1", "snap1")
	res, err := gen.EmitStructuralIR(nil, FileInput{RepoID: "repo1", Path: "sample.proto", Content: []byte(protoFixture), Language: "protobuf"}, doc)
	if err != nil {
		t.Fatalf("EmitStructuralIR: %v", err)
	}

	kinds := map[string]ir.NodeKind{}
	for _, n := range res.Nodes {
		kinds[n.Name] = n.Kind
	}

	if kinds["Greeter"] != ir.NodeKindInterface {
		t.Errorf("expected Greeter service to map to Interface, got %v", kinds["Greeter"])
	}
	if kinds["HelloRequest"] != ir.NodeKindClass {
		t.Errorf("expected HelloRequest message to map to Class, got %v", kinds["HelloRequest"])
	}
	if kinds["HelloResponse"] != ir.NodeKindClass {
		t.Errorf("expected HelloResponse message to map to Class, got %v", kinds["HelloResponse"])
	}

	var fileNode *ir.Node
	for i := range res.Nodes {
		if res.Nodes[i].Kind == ir.NodeKindFile {
			fileNode = &res.Nodes[i]
		}
	}
	if fileNode == nil {
		t.Fatalf("expected a File node")
	}
	for _, e := range res.Edges {
		if e.Kind != ir.EdgeKindContains || e.SourceID != fileNode.ID {
			t.Errorf("expected every edge to be a Contains edge rooted at the file node, got %+v", e)
		}
	}
}
