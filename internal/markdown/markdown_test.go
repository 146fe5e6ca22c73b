// SPDX-License-Identifier: AGPL-3.0-or-later
package markdown

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "out", "file.md")
	content := []byte("# hello\n")

	if err := AtomicWrite(target, content); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("got %q, want %q", got, content)
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "file.md")

	if err := AtomicWrite(target, []byte("x")); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "file.md" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestHeader(t *testing.T) {
	if got := Header(2, "Stats"); got != "## Stats\n\n" {
		t.Errorf("got %q", got)
	}
}

func TestTable(t *testing.T) {
	got := Table([]string{"A", "B"}, [][]string{{"1", "2"}, {"3", "4"}})
	want := "| A | B |\n| --- | --- |\n| 1 | 2 |\n| 3 | 4 |\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCodeFence(t *testing.T) {
	got := CodeFence("mermaid", "gantt")
	want := "```mermaid\ngantt\n```\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// A trailing newline in the body is not doubled.
	if CodeFence("mermaid", "gantt\n") != want {
		t.Errorf("trailing newline handling broken")
	}
}
