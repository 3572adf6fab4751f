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

package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestShadowOverlay_WriteThenReadReturnsWrittenBytes(t *testing.T) {
	root := t.TempDir()
	o := NewShadowOverlay(root)

	if err := o.Write("pkg/foo.go", []byte("package foo")); err != nil {
		t.Fatalf("expected write to succeed, got %v", err)
	}
	got, err := o.Read("pkg/foo.go")
	if err != nil {
		t.Fatalf("expected read to succeed, got %v", err)
	}
	if string(got) != "package foo" {
		t.Fatalf("expected staged content back, got %q", got)
	}

	// Nothing should have reached disk yet.
	if _, err := os.Stat(filepath.Join(root, "pkg/foo.go")); !os.IsNotExist(err) {
		t.Fatal("expected uncommitted write to not exist on disk")
	}
}

func TestShadowOverlay_RollbackDiscardsAllStagedChanges(t *testing.T) {
	root := t.TempDir()
	o := NewShadowOverlay(root)
	_ = o.Write("a.txt", []byte("staged"))
	o.Rollback()

	if _, err := o.Read("a.txt"); err == nil {
		t.Fatal("expected read after rollback to fall through to a nonexistent file")
	}
	if _, err := os.Stat(filepath.Join(root, "a.txt")); !os.IsNotExist(err) {
		t.Fatal("expected rollback to leave nothing on disk")
	}
}

func TestShadowOverlay_CommitFlushesToDisk(t *testing.T) {
	root := t.TempDir()
	o := NewShadowOverlay(root)
	_ = o.Write("nested/b.txt", []byte("committed"))
	if err := o.Commit(); err != nil {
		t.Fatalf("expected commit to succeed, got %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "nested/b.txt"))
	if err != nil {
		t.Fatalf("expected file on disk after commit, got %v", err)
	}
	if string(got) != "committed" {
		t.Fatalf("expected committed content, got %q", got)
	}
}

func TestShadowOverlay_RejectsPathEscapingRoot(t *testing.T) {
	root := t.TempDir()
	o := NewShadowOverlay(root)
	if err := o.Write("../escape.txt", []byte("x")); err == nil {
		t.Fatal("expected write escaping workspace root to be rejected")
	}
	if err := o.Write("/etc/passwd", []byte("x")); err == nil {
		t.Fatal("expected absolute path write to be rejected")
	}
}

func TestShadowOverlay_RejectsSymlinkEscapingRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	outsideFile := filepath.Join(outside, "secret.txt")
	if err := os.WriteFile(outsideFile, []byte("secret"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	link := filepath.Join(root, "link.txt")
	if err := os.Symlink(outsideFile, link); err != nil {
		t.Skipf("symlinks not supported in this environment: %v", err)
	}

	o := NewShadowOverlay(root)
	if _, err := o.Read("link.txt"); err == nil {
		t.Fatal("expected read through a symlink escaping the workspace root to be rejected")
	}
}

func TestShadowOverlay_DeleteThenReadFails(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "c.txt"), []byte("original"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	o := NewShadowOverlay(root)
	if err := o.Delete("c.txt"); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if _, err := o.Read("c.txt"); err == nil {
		t.Fatal("expected read of a file deleted in this transaction to fail")
	}
}
