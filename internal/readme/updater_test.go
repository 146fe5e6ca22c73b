// SPDX-License-Identifier: AGPL-3.0-or-later
package readme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var fixedNow = func() time.Time {
	return time.Date(2025, 6, 2, 12, 30, 45, 0, time.UTC)
}

const testBlock = "```mermaid\ngantt\n    title T\n```\n\n### Roadmap statistics"

func newTestUpdater(t *testing.T, path string) (*Updater, *[]string) {
	t.Helper()
	var warnings []string
	u := NewUpdater(path, fixedNow, func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})
	return u, &warnings
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestUpdateReplacesExistingBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	original := "# My Project\n\nIntro text.\n\n" +
		MarkerStart + "\nstale chart\n" + MarkerEnd + "\n\nTrailing docs.\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	u, _ := newTestUpdater(t, path)
	if err := u.Update(testBlock); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := read(t, path)
	if strings.Contains(got, "stale chart") {
		t.Error("old block content survived the update")
	}
	if !strings.Contains(got, "Intro text.") || !strings.Contains(got, "Trailing docs.") {
		t.Error("content outside the markers was disturbed")
	}
	if strings.Count(got, MarkerStart) != 1 || strings.Count(got, MarkerEnd) != 1 {
		t.Errorf("expected exactly one marker pair, got:\n%s", got)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	if err := os.WriteFile(path, []byte("# Project\n\nBody.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	u, _ := newTestUpdater(t, path)
	if err := u.Update(testBlock); err != nil {
		t.Fatalf("first update: %v", err)
	}
	afterFirst := read(t, path)

	if err := u.Update(testBlock); err != nil {
		t.Fatalf("second update: %v", err)
	}
	afterSecond := read(t, path)

	if afterFirst != afterSecond {
		t.Errorf("second update changed the file\nfirst:\n%s\nsecond:\n%s", afterFirst, afterSecond)
	}
}

func TestUpdateInsertsAfterHeadingSkippingBadges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	original := "# Project\n\n" +
		"[![build](https://example.com/badge.svg)](https://example.com)\n" +
		"![logo](logo.png)\n" +
		"<img src=\"banner.png\">\n\n" +
		"First paragraph.\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	u, _ := newTestUpdater(t, path)
	if err := u.Update(testBlock); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := read(t, path)
	badgeIdx := strings.Index(got, "badge.svg")
	markerIdx := strings.Index(got, MarkerStart)
	paraIdx := strings.Index(got, "First paragraph.")
	if markerIdx < badgeIdx {
		t.Error("block inserted before the badge lines")
	}
	if markerIdx > paraIdx {
		t.Error("block inserted after the body text")
	}
	if strings.Count(got, MarkerStart) != 1 || strings.Count(got, MarkerEnd) != 1 {
		t.Errorf("expected exactly one marker pair, got:\n%s", got)
	}
}

func TestUpdateRebuildsWhenEndMarkerMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")
	original := "# Project\n\n" + MarkerStart + "\norphaned content\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	u, warnings := newTestUpdater(t, path)
	if err := u.Update(testBlock); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := read(t, path)
	if strings.Count(got, MarkerStart) != 1 || strings.Count(got, MarkerEnd) != 1 {
		t.Errorf("expected a rebuilt marker pair, got:\n%s", got)
	}
	if len(*warnings) == 0 {
		t.Error("expected a warning about the malformed marker block")
	}
}

func TestUpdateCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")

	u, _ := newTestUpdater(t, path)
	if err := u.Update(testBlock); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := read(t, path)
	if !strings.Contains(got, "# Roadmap") {
		t.Error("default document heading missing")
	}
	if !strings.Contains(got, MarkerStart) || !strings.Contains(got, MarkerEnd) {
		t.Error("markers missing from synthesized document")
	}
}

func TestUpdateWritesBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")
	original := "# Project\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	u, _ := newTestUpdater(t, path)
	if err := u.Update(testBlock); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	backupPath := path + ".backup.2025-06-02T12-30-45"
	data, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("backup not written: %v", err)
	}
	if string(data) != original {
		t.Errorf("backup content = %q, want %q", data, original)
	}
}

func TestUpdateNoBackupForMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")

	u, _ := newTestUpdater(t, path)
	if err := u.Update(testBlock); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".backup.") {
			t.Errorf("unexpected backup file %s for a freshly created target", e.Name())
		}
	}
}

func TestUpdateFailsVerificationWithoutGanttFence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.md")

	u, _ := newTestUpdater(t, path)
	err := u.Update("just some text, no chart")
	if err == nil {
		t.Fatal("expected verification failure for a block without a mermaid gantt fence")
	}
	if !strings.Contains(err.Error(), "verification") {
		t.Errorf("unexpected error: %v", err)
	}
}
