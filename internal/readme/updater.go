// SPDX-License-Identifier: AGPL-3.0-or-later

// Package readme splices generated roadmap content between marker comments
// in a target file, leaving everything outside the markers untouched.
package readme

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bartekus/roadmapgen/internal/markdown"
)

const (
	MarkerStart = "<!-- ROADMAP-START -->"
	MarkerEnd   = "<!-- ROADMAP-END -->"

	// backupStamp is ISO-8601-like but filesystem-safe (no colons).
	backupStamp = "2006-01-02T15-04-05"
)

// Updater rewrites the block between the roadmap markers of one file.
type Updater struct {
	path  string
	now   func() time.Time
	warnf func(format string, args ...any)
}

// NewUpdater builds an Updater for path. now supplies backup timestamps;
// warnf receives non-fatal problems (backup failures, malformed markers).
func NewUpdater(path string, now func() time.Time, warnf func(format string, args ...any)) *Updater {
	if now == nil {
		now = time.Now
	}
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Updater{path: path, now: now, warnf: warnf}
}

// Update splices block between the markers, creating the file from a minimal
// skeleton when it does not exist. The previous content is backed up first
// (best effort), and the written file is re-read and verified to contain the
// markers and a mermaid gantt fence.
func (u *Updater) Update(block string) error {
	existing, err := os.ReadFile(u.path)
	fileExisted := err == nil
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading %s: %w", u.path, err)
		}
		existing = []byte(defaultDocument())
	}

	updated := u.splice(string(existing), strings.TrimSpace(block))

	if fileExisted {
		u.backup(existing)
	}

	if err := markdown.AtomicWrite(u.path, []byte(updated)); err != nil {
		return fmt.Errorf("writing %s: %w", u.path, err)
	}

	return u.verify()
}

// splice places block between the markers, handling the three marker states:
// both present, start without end, and neither.
func (u *Updater) splice(content, block string) string {
	startIdx := strings.Index(content, MarkerStart)
	endIdx := strings.Index(content, MarkerEnd)

	switch {
	case startIdx >= 0 && endIdx > startIdx:
		return content[:startIdx+len(MarkerStart)] + "\n" + block + "\n" + content[endIdx:]

	case startIdx >= 0:
		// End marker missing or out of order: the block is malformed, so the
		// stray start marker is replaced with a fresh complete block.
		u.warnf("%s: found %s without a matching %s; rebuilding the marker block", u.path, MarkerStart, MarkerEnd)
		if endIdx >= 0 {
			content = strings.Replace(content, MarkerEnd, "", 1)
		}
		return strings.Replace(content, MarkerStart, markerBlock(block), 1)

	default:
		return insertAfterHeading(content, markerBlock(block))
	}
}

func markerBlock(block string) string {
	return MarkerStart + "\n" + block + "\n" + MarkerEnd
}

// insertAfterHeading places block after the first top-level heading, skipping
// the badge/image/HTML lines that conventionally sit directly under it. With
// no heading the block is appended.
func insertAfterHeading(content, block string) string {
	lines := strings.Split(content, "\n")

	headingIdx := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			headingIdx = i
			break
		}
	}
	if headingIdx < 0 {
		if !strings.HasSuffix(content, "\n") && content != "" {
			content += "\n"
		}
		return content + "\n" + block + "\n"
	}

	insertIdx := headingIdx + 1
	for insertIdx < len(lines) && isDecorationLine(lines[insertIdx]) {
		insertIdx++
	}

	out := make([]string, 0, len(lines)+3)
	out = append(out, lines[:insertIdx]...)
	out = append(out, "", block)
	out = append(out, lines[insertIdx:]...)
	return strings.Join(out, "\n")
}

// isDecorationLine matches badge, image, and raw-HTML lines plus the blank
// lines between them.
func isDecorationLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" ||
		strings.HasPrefix(trimmed, "[![") ||
		strings.HasPrefix(trimmed, "![") ||
		strings.HasPrefix(trimmed, "<")
}

// backup copies the current content next to the target. Backups are best
// effort; a failure is warned about, never fatal.
func (u *Updater) backup(content []byte) {
	backupPath := fmt.Sprintf("%s.backup.%s", u.path, u.now().Format(backupStamp))
	if err := os.WriteFile(backupPath, content, 0o644); err != nil {
		u.warnf("backup of %s failed: %v", u.path, err)
	}
}

// verify re-reads the written file and asserts the spliced block survived.
func (u *Updater) verify() error {
	data, err := os.ReadFile(u.path)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", u.path, err)
	}
	content := string(data)

	if !strings.Contains(content, MarkerStart) || !strings.Contains(content, MarkerEnd) {
		return errors.New("update verification failed: marker comments missing after write")
	}
	if !strings.Contains(content, "```mermaid") || !strings.Contains(content, "gantt") {
		return errors.New("update verification failed: mermaid gantt block missing after write")
	}
	return nil
}

func defaultDocument() string {
	return "# Roadmap\n\nThis document is generated; edits between the roadmap markers are overwritten.\n"
}
