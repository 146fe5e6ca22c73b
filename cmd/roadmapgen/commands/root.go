// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands contains the Cobra commands for the roadmapgen CLI.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the roadmapgen root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("ROADMAPGEN_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "roadmapgen",
		Short:         "Roadmapgen - GitHub project board to Mermaid Gantt roadmap",
		Long:          "Roadmapgen fetches a GitHub Projects-v2 board, renders it as a Mermaid Gantt chart, and splices the chart into a README between roadmap markers.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().String("config", "", "path to a roadmapgen.yaml config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of roadmapgen",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "roadmapgen version %s\n", version)
		},
	})

	cmd.AddCommand(NewGenerateCommand())
	cmd.AddCommand(NewProjectsCommand())

	return cmd
}
