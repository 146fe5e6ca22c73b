// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bartekus/roadmapgen/cmd/roadmapgen/internal/clierr"
)

func TestCLIContract(t *testing.T) {
	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	if err != nil {
		t.Fatalf("root command failed: %v", err)
	}

	out := b.String()

	requiredCommands := []string{
		"completion",
		"generate",
		"help",
		"projects",
		"version",
	}

	for _, c := range requiredCommands {
		if !strings.Contains(out, c) {
			t.Errorf("expected top-level command %q in root help", c)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("ROADMAPGEN_VERSION", "1.2.3")

	cmd := NewRootCmd()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(b.String(), "roadmapgen version 1.2.3") {
		t.Errorf("unexpected version output: %q", b.String())
	}
}

func TestGenerateMissingOrganizationIsConfigError(t *testing.T) {
	for _, key := range []string{"GITHUB_ORG", "ORGANIZATION", "GITHUB_TOKEN"} {
		t.Setenv(key, "")
	}

	cmd := NewRootCmd()
	cmd.SetOut(bytes.NewBufferString(""))
	cmd.SetErr(bytes.NewBufferString(""))
	cmd.SetArgs([]string{"generate", "--config", "no-such-roadmapgen.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected an error when no organization is configured")
	}
	if got := clierr.ExitCodeOf(err); got != 2 {
		t.Errorf("exit code = %d, want 2 for configuration errors", got)
	}
	if !strings.Contains(err.Error(), "organization is required") {
		t.Errorf("unexpected error: %v", err)
	}
}
