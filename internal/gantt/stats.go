// SPDX-License-Identifier: AGPL-3.0-or-later
package gantt

import (
	"strconv"

	"github.com/bartekus/roadmapgen/internal/markdown"
	"github.com/bartekus/roadmapgen/internal/processor"
)

// Stats summarizes the processed items rendered alongside the chart.
type Stats struct {
	Total      int
	Done       int
	InProgress int
	ToDo       int
	Critical   int
	High       int
	// CompletionPct is floor(Done / Total * 100); 0 when Total is 0.
	CompletionPct int
}

// ComputeStats tallies the full item set, not just the rendered selection.
func ComputeStats(items []processor.Item) Stats {
	var s Stats
	s.Total = len(items)
	for _, item := range items {
		switch item.Status {
		case processor.StatusDone:
			s.Done++
		case processor.StatusInProgress:
			s.InProgress++
		case processor.StatusToDo:
			s.ToDo++
		}
		switch item.Priority {
		case processor.PriorityCritical:
			s.Critical++
		case processor.PriorityHigh:
			s.High++
		}
	}
	if s.Total > 0 {
		s.CompletionPct = s.Done * 100 / s.Total
	}
	return s
}

// Markdown renders the statistics as a table under a header.
func (s Stats) Markdown() string {
	rows := [][]string{
		{"Total items", strconv.Itoa(s.Total)},
		{"Done", strconv.Itoa(s.Done)},
		{"In progress", strconv.Itoa(s.InProgress)},
		{"To do", strconv.Itoa(s.ToDo)},
		{"Critical priority", strconv.Itoa(s.Critical)},
		{"High priority", strconv.Itoa(s.High)},
		{"Completion", strconv.Itoa(s.CompletionPct) + "%"},
	}
	return markdown.Header(3, "Roadmap statistics") + markdown.Table([]string{"Metric", "Value"}, rows)
}
