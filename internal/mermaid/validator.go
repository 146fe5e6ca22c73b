// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mermaid checks generated chart text before it reaches the README:
// a hard check via the external mermaid CLI when it is installed, and a
// heuristic line scan that is always available.
package mermaid

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultBinary is the mermaid CLI looked up on PATH.
const DefaultBinary = "mmdc"

// Result is the outcome of a validation attempt. Warning is set when the
// external renderer was unavailable and the check was skipped.
type Result struct {
	Valid   bool
	Warning string
	Error   string
}

// Validator runs the external mermaid renderer against chart text.
type Validator struct {
	// Binary overrides the renderer binary name; empty means DefaultBinary.
	Binary string
}

// Validate renders the chart to a throwaway image and interprets the exit
// status. A missing renderer is not a failure: the result is valid with a
// warning so the pipeline can proceed. Temp files are removed on every path.
func (v *Validator) Validate(ctx context.Context, chart string) (Result, error) {
	binary := v.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return Result{
			Valid:   true,
			Warning: fmt.Sprintf("%s not found on PATH; skipping syntax validation", binary),
		}, nil
	}

	dir, err := os.MkdirTemp("", "roadmapgen-validate-*")
	if err != nil {
		return Result{}, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "chart.mmd")
	output := filepath.Join(dir, "chart.svg")
	if err := os.WriteFile(input, []byte(chart), 0o600); err != nil {
		return Result{}, fmt.Errorf("writing chart temp file: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, "-i", input, "-o", output)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		if line := offendingLine(chart, msg); line != "" {
			msg += "\noffending line: " + line
		}
		return Result{Valid: false, Error: msg}, nil
	}

	return Result{Valid: true}, nil
}

// offendingLine extracts the chart line a renderer error points at, when the
// error text carries a "line N" reference.
func offendingLine(chart, errText string) string {
	fields := strings.Fields(errText)
	for i, f := range fields {
		if !strings.EqualFold(strings.TrimSuffix(f, ":"), "line") || i+1 >= len(fields) {
			continue
		}
		n, err := strconv.Atoi(strings.Trim(fields[i+1], ":,."))
		if err != nil || n < 1 {
			continue
		}
		lines := strings.Split(chart, "\n")
		if n <= len(lines) {
			return strings.TrimSpace(lines[n-1])
		}
	}
	return ""
}

// CheckCommonIssues scans the chart line by line for syntax footguns the
// renderer reports poorly: stray separators and task lines with the wrong
// field count. It is independent of the external renderer.
func CheckCommonIssues(chart string) []string {
	var warnings []string

	for i, raw := range strings.Split(chart, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || isDirective(line) || strings.HasPrefix(line, "%%") {
			continue
		}

		// Everything left should be a task or milestone line.
		colons := strings.Count(line, ":")
		if colons == 0 {
			warnings = append(warnings, fmt.Sprintf("line %d: task line has no colon separator", i+1))
			continue
		}
		if colons > 1 {
			warnings = append(warnings, fmt.Sprintf("line %d: stray colon outside the tag position", i+1))
		}

		// A well-formed task line splits into exactly three comma fields:
		// "<name> [tags]:<id>, <start>, <duration>".
		body := line
		if idx := strings.Index(body, "%%"); idx >= 0 {
			body = strings.TrimSpace(body[:idx])
		}
		fields := strings.Split(body, ",")
		if len(fields) > 3 {
			warnings = append(warnings, fmt.Sprintf("line %d: %d comma-separated fields; a stray comma splits the task line", i+1, len(fields)))
		}
		if len(fields) < 3 {
			warnings = append(warnings, fmt.Sprintf("line %d: fewer than 3 comma-separated fields", i+1))
		}
	}

	return warnings
}

func isDirective(line string) bool {
	for _, prefix := range []string{"gantt", "title ", "dateFormat ", "axisFormat ", "excludes ", "section "} {
		if line == strings.TrimSpace(prefix) || strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
