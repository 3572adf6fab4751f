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

package parser

import "testing"

func TestSimplifiedFrontend_ScanGo(t *testing.T) {
	src := `package main

func Add(a, b int) int {
	return a + b
}

func (s *Server) Handle() {
	x := 1
	_ = x
}
`
	decls := NewSimplifiedFrontend().ScanGo(src)
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d: %+v", len(decls), decls)
	}
	if decls[0].Name != "Add" {
		t.Errorf("expected first decl name 'Add', got %q", decls[0].Name)
	}
	if decls[1].Name != "Handle" {
		t.Errorf("expected second decl name 'Handle', got %q", decls[1].Name)
	}
}

func TestSimplifiedFrontend_ScanPython(t *testing.T) {
	src := `import os

def greet(name):
    return "hi " + name


class Greeter:
    def __init__(self):
        pass
`
	decls := NewSimplifiedFrontend().ScanPython(src)
	if len(decls) != 2 {
		t.Fatalf("expected 2 top-level declarations, got %d: %+v", len(decls), decls)
	}
	if decls[0].Kind != "function" || decls[0].Name != "greet" {
		t.Errorf("unexpected first decl: %+v", decls[0])
	}
	if decls[1].Kind != "class" || decls[1].Name != "Greeter" {
		t.Errorf("unexpected second decl: %+v", decls[1])
	}
}

func TestSimplifiedFrontend_ScanProtobuf(t *testing.T) {
	src := `syntax = "proto3";

service Greeter {
  rpc SayHello (HelloRequest) returns (HelloReply);
}

message HelloRequest {
  string name = 1;
}
`
	decls := NewSimplifiedFrontend().ScanProtobuf(src)
	var sawService, sawMessage bool
	for _, d := range decls {
		if d.Kind == "service" && d.Name == "Greeter" {
			sawService = true
		}
		if d.Kind == "message" && d.Name == "HelloRequest" {
			sawMessage = true
		}
	}
	if !sawService {
		t.Errorf("expected to recover the Greeter service, got %+v", decls)
	}
	if !sawMessage {
		t.Errorf("expected to recover the HelloRequest message, got %+v", decls)
	}
}

func TestResolve_AutoFallsBackWithoutGrammar(t *testing.T) {
	f := NewFrontend()
	if got := Resolve(ModeAuto, LanguageGo, f); got != ModeTreeSitter {
		t.Errorf("expected ModeAuto to resolve to tree-sitter for Go, got %v", got)
	}
	if got := Resolve(ModeAuto, LanguageProtobuf, f); got != ModeSimplified {
		t.Errorf("expected ModeAuto to resolve to simplified for protobuf, got %v", got)
	}
}

func TestResolve_ExplicitModeIsNotOverridden(t *testing.T) {
	if got := Resolve(ModeSimplified, LanguageGo, NewFrontend()); got != ModeSimplified {
		t.Errorf("explicit ModeSimplified should not be overridden, got %v", got)
	}
}
