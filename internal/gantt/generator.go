// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gantt renders processed board items as Mermaid Gantt-chart text.
// Output is deterministic: identical items and an identical reference time
// always produce byte-identical text.
package gantt

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bartekus/roadmapgen/internal/processor"
)

const (
	// maxTaskNameLen is the visible cap; longer names are cut to
	// truncatedNameLen characters plus an ellipsis.
	maxTaskNameLen   = 40
	truncatedNameLen = 37

	maxSlugLen      = 20
	maxMilestones   = 5
	defaultMaxItems = 50
)

// Options controls chart generation.
type Options struct {
	Title        string
	MaxItems     int
	GroupByEpic  bool
	ShowProgress bool
	Now          time.Time
}

// Generator emits Mermaid Gantt syntax for a set of items.
type Generator struct {
	opts Options
}

// New builds a Generator, applying defaults for an empty title or item cap.
func New(opts Options) *Generator {
	if opts.Title == "" {
		opts.Title = "Project Roadmap"
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = defaultMaxItems
	}
	return &Generator{opts: opts}
}

// Generate renders the chart for the given items.
func (g *Generator) Generate(items []processor.Item) string {
	selected := g.selectItems(items)

	var b strings.Builder
	b.WriteString("gantt\n")
	fmt.Fprintf(&b, "    title %s\n", sanitizeTaskName(g.opts.Title))
	b.WriteString("    dateFormat YYYY-MM-DD\n")
	b.WriteString("    axisFormat %b %d\n")

	if g.opts.GroupByEpic {
		for _, group := range groupByEpic(selected) {
			fmt.Fprintf(&b, "    section %s\n", sanitizeTaskName(group.epic))
			for _, item := range group.items {
				b.WriteString(g.taskLine(item))
			}
		}
	} else {
		for _, item := range selected {
			b.WriteString(g.taskLine(item))
		}
	}

	if milestones := collectMilestones(items); len(milestones) > 0 {
		b.WriteString("    section Milestones\n")
		for i, ms := range milestones {
			fmt.Fprintf(&b, "    %s milestone:ms%d, %s, 0d\n",
				truncateName(sanitizeTaskName(ms.name)), i+1, ms.date.Format("2006-01-02"))
		}
	}

	return b.String()
}

// selectItems applies the epic-first filter, the priority sort, and the item
// cap.
func (g *Generator) selectItems(items []processor.Item) []processor.Item {
	selected := make([]processor.Item, 0, len(items))
	for _, item := range items {
		if isEpicItem(item) {
			selected = append(selected, item)
		}
	}
	if len(selected) == 0 {
		for _, item := range items {
			if item.Title != "" && !item.StartDate.IsZero() && !item.DueDate.IsZero() {
				selected = append(selected, item)
			}
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() < b.Priority.Rank()
		}
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.Title < b.Title
	})

	if len(selected) > g.opts.MaxItems {
		selected = selected[:g.opts.MaxItems]
	}
	return selected
}

// isEpicItem reports whether an item is marked as an epic by title or label.
func isEpicItem(item processor.Item) bool {
	lower := strings.ToLower(item.Title)
	if strings.HasPrefix(lower, "epic:") || strings.HasPrefix(lower, "epic ") {
		return true
	}
	for _, label := range item.Labels {
		if strings.EqualFold(label, "epic") {
			return true
		}
	}
	return false
}

// taskLine emits one task. The shape is
//
//	<name> [<tags>]:<taskId>, <start>, <duration>d
//
// where tags are space-joined and the colon is present even with no tags.
func (g *Generator) taskLine(item processor.Item) string {
	name := truncateName(sanitizeTaskName(item.Title))

	var tags []string
	if item.Priority == processor.PriorityCritical {
		tags = append(tags, "crit")
	}
	if item.Status == processor.StatusDone {
		tags = append(tags, "done")
	}
	if item.Status == processor.StatusInProgress {
		tags = append(tags, "active")
	}

	line := fmt.Sprintf("    %s %s:%s, %s, %dd",
		name,
		strings.Join(tags, " "),
		taskID(item),
		item.StartDate.Format("2006-01-02"),
		item.DurationDays,
	)

	if g.opts.ShowProgress {
		switch item.Status {
		case processor.StatusDone:
			line += " %% Completed"
		case processor.StatusInProgress:
			line += " %% In Progress"
		}
	}

	return line + "\n"
}

// taskID derives a stable task identifier: the source issue/PR number when
// there is one, otherwise a slug of the title.
func taskID(item processor.Item) string {
	if item.Number > 0 {
		return fmt.Sprintf("task%d", item.Number)
	}
	return "task_" + slugify(item.Title)
}

// sanitizeTaskName strips characters that break the chart grammar and
// collapses runs of whitespace.
func sanitizeTaskName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(`:;[](){}",`, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= maxTaskNameLen {
		return name
	}
	return string(runes[:truncatedNameLen]) + "..."
}

func slugify(title string) string {
	lower := strings.ToLower(sanitizeTaskName(title))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	slug := strings.Trim(b.String(), "_")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "_")
	}
	return slug
}

type epicGroup struct {
	epic  string
	items []processor.Item
}

// groupByEpic buckets items by epic, preserving the incoming sort. Because
// items arrive rank-sorted, first-appearance order equals ordering groups by
// their best (minimum) priority rank.
func groupByEpic(items []processor.Item) []epicGroup {
	index := map[string]int{}
	var groups []epicGroup
	for _, item := range items {
		epic := item.Epic
		if epic == "" {
			epic = "Other"
		}
		i, ok := index[epic]
		if !ok {
			i = len(groups)
			index[epic] = i
			groups = append(groups, epicGroup{epic: epic})
		}
		groups[i].items = append(groups[i].items, item)
	}
	return groups
}

type milestoneEntry struct {
	name string
	date time.Time
}

// collectMilestones aggregates up to maxMilestones deduplicated entries in
// ascending date order: source milestones with due dates, plus synthetic
// entries for completed critical items.
func collectMilestones(items []processor.Item) []milestoneEntry {
	seen := map[string]bool{}
	var entries []milestoneEntry

	add := func(name string, date time.Time) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || date.IsZero() || seen[key] {
			return
		}
		seen[key] = true
		entries = append(entries, milestoneEntry{name: name, date: date})
	}

	for _, item := range items {
		if item.Milestone != nil && item.Milestone.DueOn != nil {
			add(item.Milestone.Title, *item.Milestone.DueOn)
		}
	}
	for _, item := range items {
		if item.Status == processor.StatusDone && item.Priority == processor.PriorityCritical {
			date := item.DueDate
			if item.ClosedAt != nil {
				date = *item.ClosedAt
			}
			add(item.Title, date)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].date.Equal(entries[j].date) {
			return entries[i].date.Before(entries[j].date)
		}
		return entries[i].name < entries[j].name
	})

	if len(entries) > maxMilestones {
		entries = entries[:maxMilestones]
	}
	return entries
}
