// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/roadmapgen/cmd/roadmapgen/internal/clierr"
	"github.com/bartekus/roadmapgen/internal/config"
	"github.com/bartekus/roadmapgen/internal/github"
)

// NewProjectsCommand returns the `roadmapgen projects` command, which lists
// the organization's boards. Useful when PROJECT_ID points at nothing.
func NewProjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List the organization's project boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				if errors.Is(err, config.ErrMissingOrganization) {
					return clierr.Wrap(2, "projects", err)
				}
				return clierr.Wrap(2, "projects: loading configuration", err)
			}

			ctx := cmd.Context()
			token, err := github.ResolveToken(ctx, cfg.Token)
			if err != nil {
				return clierr.Wrap(2, "projects", err)
			}

			client := github.NewClient(token, nil)
			projects, err := client.GetOrganizationProjects(ctx, cfg.Organization)
			if err != nil {
				return clierr.Wrap(1, "projects", err)
			}

			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintf(out, "no project boards found in %s\n", cfg.Organization)
				return nil
			}
			for _, p := range projects {
				fmt.Fprintf(out, "#%d\t%s\n", p.Number, p.Title)
			}
			return nil
		},
	}
}
