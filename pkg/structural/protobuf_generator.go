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
	"github.com/kraklabs/cie/pkg/ir"
	"github.com/kraklabs/cie/pkg/parser"
)

// ProtoGenerator emits structural IR for Protocol Buffers service and
// message definitions. There is no tree-sitter-proto grammar in the
// dependency set, so this always runs against SimplifiedFrontend's
// line-scanned declarations rather than an AstTree; EmitStructuralIR
// still satisfies the Generator interface by ignoring the supplied tree
// (which will be nil for protobuf inputs) and re-scanning file.Content.
type ProtoGenerator struct{}

func (g *ProtoGenerator) EmitStructuralIR(tree *parser.AstTree, file FileInput, doc *ir.IRDocument) (*FileResult, error) {
	res := &FileResult{}

	fileNodeID := ir.NodeID(file.RepoID, ir.NodeKindFile, file.Path, file.Path, "protobuf")
	fileNode := ir.Node{
		ID:          fileNodeID,
		Kind:        ir.NodeKindFile,
		Name:        file.Path,
		FilePath:    file.Path,
		Language:    "protobuf",
		ContentHash: ir.ContentHash(file.Content),
	}
	res.Nodes = append(res.Nodes, fileNode)

	decls := parser.NewSimplifiedFrontend().ScanProtobuf(string(file.Content))
	for _, d := range decls {
		kind := ir.NodeKindClass
		switch d.Kind {
		case "service":
			kind = ir.NodeKindInterface
		case "enum":
			kind = ir.NodeKindEnum
		case "message":
			kind = ir.NodeKindClass
		}
		id := ir.NodeID(file.RepoID, kind, file.Path, d.Name, "protobuf")
		n := ir.Node{
			ID:       id,
			Kind:     kind,
			Name:     d.Name,
			FilePath: file.Path,
			Span:     ir.Span{StartLine: d.StartLine, EndLine: d.EndLine},
			Language: "protobuf",
			ParentID: fileNodeID,
			Attrs:    ir.Attrs{"proto_decl_kind": ir.StringAttr(d.Kind)},
		}
		res.Nodes = append(res.Nodes, n)
		res.Edges = append(res.Edges, containsEdge(fileNodeID, id))
	}

	return res, nil
}
