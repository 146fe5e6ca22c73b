// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bartekus/roadmapgen/cmd/roadmapgen/internal/clierr"
	"github.com/bartekus/roadmapgen/internal/config"
	"github.com/bartekus/roadmapgen/internal/github"
	"github.com/bartekus/roadmapgen/internal/mermaid"
	"github.com/bartekus/roadmapgen/internal/pipeline"
	"github.com/bartekus/roadmapgen/internal/readme"
)

// NewGenerateCommand returns the `roadmapgen generate` command, the main
// pipeline entrypoint.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the roadmap chart and splice it into the README",
		Long: `Generate fetches the configured project board, renders a Mermaid Gantt
chart with statistics, validates it, and updates the target README between
the <!-- ROADMAP-START --> and <!-- ROADMAP-END --> markers.

Flags override environment variables, which override roadmapgen.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				if errors.Is(err, config.ErrMissingOrganization) {
					return clierr.Wrap(2, "generate", err)
				}
				return clierr.Wrap(2, "generate: loading configuration", err)
			}

			ctx := cmd.Context()
			token, err := github.ResolveToken(ctx, cfg.Token)
			if err != nil {
				return clierr.Wrap(2, "generate", err)
			}

			warnf := func(format string, args ...any) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
			}
			client := github.NewClient(token, warnf)

			p := pipeline.New(
				cfg,
				client,
				&mermaid.Validator{},
				readme.NewUpdater(cfg.ReadmePath, time.Now, warnf),
				time.Now(),
				cmd.OutOrStdout(),
				cmd.ErrOrStderr(),
			)

			if err := p.Run(ctx); err != nil {
				return clierr.Wrap(1, "generate", err)
			}
			return nil
		},
	}

	cmd.Flags().String("readme", "", "target file to splice the chart into")
	cmd.Flags().IntP("project", "p", 0, "project board number")
	cmd.Flags().Int("max-items", 0, "maximum number of rendered items")
	cmd.Flags().String("title", "", "chart title")
	cmd.Flags().Bool("dry-run", false, "run every stage except the file write")
	cmd.Flags().Bool("no-group", false, "disable grouping tasks into epic sections")

	return cmd
}

// loadConfig reads configuration and applies flag overrides on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("readme") {
		cfg.ReadmePath, _ = flags.GetString("readme")
	}
	if flags.Changed("project") {
		cfg.ProjectNumber, _ = flags.GetInt("project")
	}
	if flags.Changed("max-items") {
		cfg.MaxItems, _ = flags.GetInt("max-items")
	}
	if flags.Changed("title") {
		cfg.ChartTitle, _ = flags.GetString("title")
	}
	if flags.Changed("dry-run") {
		cfg.DryRun, _ = flags.GetBool("dry-run")
	}
	if flags.Changed("no-group") {
		noGroup, _ := flags.GetBool("no-group")
		cfg.GroupByEpic = !noGroup
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}

	return cfg, nil
}
