// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline runs the four roadmap stages in strict sequence:
// fetch, process, generate, validate-and-update. Each stage completes fully
// before the next begins and no state is shared beyond the values passed
// forward. The context is threaded through every stage so a signal cancels
// the run between (and inside) I/O operations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bartekus/roadmapgen/internal/config"
	"github.com/bartekus/roadmapgen/internal/gantt"
	"github.com/bartekus/roadmapgen/internal/github"
	"github.com/bartekus/roadmapgen/internal/markdown"
	"github.com/bartekus/roadmapgen/internal/mermaid"
	"github.com/bartekus/roadmapgen/internal/processor"
)

// BoardClient is the slice of the GitHub client the pipeline uses.
type BoardClient interface {
	GetProject(ctx context.Context, org string, number int) (*github.Project, error)
	GetProjectItems(ctx context.Context, projectID string, pageSize int) ([]github.Item, error)
	GetOrganizationProjects(ctx context.Context, org string) ([]github.Project, error)
}

// ChartValidator checks generated chart text.
type ChartValidator interface {
	Validate(ctx context.Context, chart string) (mermaid.Result, error)
}

// Updater writes the final block into the target file.
type Updater interface {
	Update(block string) error
}

// ErrValidationFailed marks a chart the external renderer rejected.
var ErrValidationFailed = errors.New("generated chart failed mermaid validation")

// Pipeline wires the stages together for one run.
type Pipeline struct {
	cfg       *config.Config
	client    BoardClient
	validator ChartValidator
	updater   Updater
	now       time.Time
	out       io.Writer
	errOut    io.Writer
}

// New assembles a Pipeline. now is the fixed reference time for the whole
// run; every synthesized date and the footer timestamp derive from it.
func New(cfg *config.Config, client BoardClient, validator ChartValidator, updater Updater, now time.Time, out, errOut io.Writer) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		client:    client,
		validator: validator,
		updater:   updater,
		now:       now,
		out:       out,
		errOut:    errOut,
	}
}

// Run executes the stages. In dry-run mode everything happens except the
// final file write; the rendered block is printed instead.
func (p *Pipeline) Run(ctx context.Context) error {
	// Stage 1: fetch.
	project, err := p.client.GetProject(ctx, p.cfg.Organization, p.cfg.ProjectNumber)
	if err != nil {
		var nf *github.NotFoundError
		if errors.As(err, &nf) {
			p.listProjects(ctx)
		}
		return err
	}
	p.logf("fetched project %q (#%d)", project.Title, project.Number)

	raw, err := p.client.GetProjectItems(ctx, project.ID, github.DefaultPageSize)
	if err != nil {
		return err
	}
	p.logf("fetched %d items", len(raw))

	// Stage 2: process.
	proc := processor.New(processor.DefaultMapping(), p.now, p.warnf)
	items := proc.Process(project, raw)
	p.logf("processed %d renderable items", len(items))

	// Stage 3: generate.
	gen := gantt.New(gantt.Options{
		Title:        p.cfg.ChartTitle,
		MaxItems:     p.cfg.MaxItems,
		GroupByEpic:  p.cfg.GroupByEpic,
		ShowProgress: true,
		Now:          p.now,
	})
	chart := gen.Generate(items)
	stats := gantt.ComputeStats(items)

	for _, w := range mermaid.CheckCommonIssues(chart) {
		p.warnf("chart heuristic: %s", w)
	}

	// Stage 4: validate, then update.
	result, err := p.validator.Validate(ctx, chart)
	if err != nil {
		return fmt.Errorf("validating chart: %w", err)
	}
	if result.Warning != "" {
		p.warnf("%s", result.Warning)
	}
	if !result.Valid {
		p.warnf("mermaid validation failed:\n%s", result.Error)
		if !p.cfg.DryRun {
			return ErrValidationFailed
		}
	}

	block := p.buildBlock(chart, stats)
	if p.cfg.DryRun {
		fmt.Fprintln(p.out, "dry run: target file not modified; generated block follows")
		fmt.Fprintln(p.out, block)
		return nil
	}

	if err := p.updater.Update(block); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "updated %s (%d items, %d%% complete)\n", p.cfg.ReadmePath, stats.Total, stats.CompletionPct)
	return nil
}

// buildBlock assembles the content spliced between the markers: the fenced
// chart, the statistics table, footer links, and the generation timestamp.
func (p *Pipeline) buildBlock(chart string, stats gantt.Stats) string {
	boardURL := fmt.Sprintf("https://github.com/orgs/%s/projects/%d", p.cfg.Organization, p.cfg.ProjectNumber)

	return markdown.CodeFence("mermaid", chart) +
		"\n" + stats.Markdown() +
		fmt.Sprintf("\n[Project board](%s) · generated by roadmapgen\n", boardURL) +
		fmt.Sprintf("\n_Last updated: %s_", p.now.UTC().Format("2006-01-02 15:04 UTC"))
}

// listProjects prints the organization's boards as a diagnostic after a
// not-found failure. Best effort: listing errors are only warned about.
func (p *Pipeline) listProjects(ctx context.Context) {
	projects, err := p.client.GetOrganizationProjects(ctx, p.cfg.Organization)
	if err != nil {
		p.warnf("could not list projects in %s: %v", p.cfg.Organization, err)
		return
	}
	fmt.Fprintf(p.errOut, "available projects in %s:\n", p.cfg.Organization)
	for _, proj := range projects {
		fmt.Fprintf(p.errOut, "  #%d  %s\n", proj.Number, proj.Title)
	}
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.cfg.Verbose {
		fmt.Fprintf(p.out, format+"\n", args...)
	}
}

func (p *Pipeline) warnf(format string, args ...any) {
	fmt.Fprintf(p.errOut, "warning: "+format+"\n", args...)
}
