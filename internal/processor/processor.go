// SPDX-License-Identifier: AGPL-3.0-or-later

// Package processor flattens raw board items into the canonical model the
// chart generator consumes. Provider field values are mapped through an
// explicit Mapping table, then an enrichment pass fills every gap with
// deterministic defaults.
package processor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bartekus/roadmapgen/internal/github"
)

// Item is the flattened, fully enriched view of one board entry.
// After Process returns, StartDate and DueDate are always set, DurationDays
// is at least 1, and Epic/Priority/Status are never empty.
type Item struct {
	ID     string
	Title  string
	URL    string
	State  string
	Type   github.ContentType
	Number int

	Labels   []string
	Epic     string
	Priority Priority
	Status   Status

	StartDate    time.Time
	DueDate      time.Time
	DueEstimated bool
	DurationDays int

	Milestone     *github.Milestone
	Estimation    float64
	HasEstimation bool
	Sprint        string
	CustomFields  map[string]string

	CreatedAt time.Time
	ClosedAt  *time.Time
}

// Processor converts raw items into enriched Items. The reference time is
// injected so runs are reproducible under test.
type Processor struct {
	mapping Mapping
	now     time.Time
	warnf   func(format string, args ...any)
}

// New builds a Processor. A nil warnf drops per-item warnings.
func New(mapping Mapping, now time.Time, warnf func(format string, args ...any)) *Processor {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Processor{mapping: mapping, now: now, warnf: warnf}
}

// Process maps and enriches every renderable item. Items the mapping step
// rejects are warned about and excluded; they never abort the batch.
func (p *Processor) Process(project *github.Project, raw []github.Item) []Item {
	fieldNames := make(map[string]string, len(project.Fields))
	for _, def := range project.Fields {
		fieldNames[def.ID] = def.Name
	}

	items := make([]Item, 0, len(raw))
	for _, r := range raw {
		item, err := p.mapOne(fieldNames, r)
		if err != nil {
			p.warnf("skipping item %s: %v", r.ID, err)
			continue
		}
		p.enrich(&item)
		items = append(items, item)
	}
	return items
}

var errNoContent = errors.New("no backing issue or pull request content")

func (p *Processor) mapOne(fieldNames map[string]string, raw github.Item) (Item, error) {
	if raw.Content == nil {
		return Item{}, errNoContent
	}
	if raw.Content.Title == "" {
		return Item{}, errors.New("content has no title")
	}

	content := raw.Content
	item := Item{
		ID:           raw.ID,
		Title:        content.Title,
		URL:          content.URL,
		State:        content.State,
		Type:         content.Type,
		Number:       content.Number,
		Labels:       content.Labels,
		Milestone:    content.Milestone,
		CreatedAt:    content.CreatedAt,
		ClosedAt:     content.ClosedAt,
		CustomFields: map[string]string{},
	}

	var startDate, dueDate *time.Time
	for _, fv := range raw.Fields {
		name := fv.FieldName
		if name == "" {
			name = fieldNames[fv.FieldID]
		}
		if name == "" {
			continue
		}

		// Milestone field values back the same attribute as the content's
		// milestone; the content reference wins when both are present.
		if fv.Kind == github.KindMilestone {
			if item.Milestone == nil {
				item.Milestone = fv.Milestone
			}
			continue
		}

		canonical, ok := p.mapping.MatchField(name)
		if !ok {
			item.CustomFields[name] = fieldValueString(fv)
			continue
		}

		switch canonical {
		case FieldEpic:
			item.Epic = fieldValueString(fv)
		case FieldPriority:
			if pr, ok := normalizePriority(fieldValueString(fv)); ok {
				item.Priority = pr
			}
		case FieldStatus:
			item.Status = normalizeStatus(fieldValueString(fv))
		case FieldStartDate:
			if fv.Kind == github.KindDate && fv.Date != nil {
				startDate = fv.Date
			}
		case FieldDueDate:
			if fv.Kind == github.KindDate && fv.Date != nil {
				dueDate = fv.Date
			}
		case FieldEstimation:
			if fv.Kind == github.KindNumber {
				item.Estimation = fv.Number
				item.HasEstimation = true
			}
		case FieldSprint:
			if fv.Kind == github.KindIteration && fv.Iteration != nil {
				item.Sprint = fv.Iteration.Title
			} else {
				item.Sprint = fieldValueString(fv)
			}
		}
	}

	if startDate != nil {
		item.StartDate = *startDate
	}
	if dueDate != nil {
		item.DueDate = *dueDate
	}
	return item, nil
}

// enrich fills every unset attribute with its deterministic default.
func (p *Processor) enrich(item *Item) {
	if item.Epic == "" {
		item.Epic = p.inferEpic(item.Labels)
	}
	if item.Priority == "" {
		item.Priority = p.inferPriority(item.Labels)
	}
	if item.Status == "" {
		item.Status = inferStatus(item.State, item.Type)
	}

	if item.StartDate.IsZero() {
		if !item.CreatedAt.IsZero() {
			item.StartDate = item.CreatedAt
		} else {
			item.StartDate = p.now
		}
	}
	if item.DueDate.IsZero() {
		item.DueDate = item.StartDate.AddDate(0, 0, p.scheduleDays(item))
		item.DueEstimated = true
	}

	item.DurationDays = durationDays(item.StartDate, item.DueDate, p.mapping.DefaultDays)
}

// scheduleDays picks the synthesized schedule length: story points dominate
// when present, otherwise the priority table decides.
func (p *Processor) scheduleDays(item *Item) int {
	if item.HasEstimation && item.Estimation > 0 {
		days := int(math.Ceil(item.Estimation * p.mapping.EstimateDayFactor))
		if days < 1 {
			days = 1
		}
		return days
	}
	if days, ok := p.mapping.PriorityDays[item.Priority]; ok {
		return days
	}
	return p.mapping.DefaultDays
}

func (p *Processor) inferEpic(labels []string) string {
	for _, label := range labels {
		lower := strings.ToLower(strings.TrimSpace(label))
		for _, prefix := range p.mapping.EpicPrefixes {
			if strings.HasPrefix(lower, prefix) {
				name := strings.TrimSpace(label[len(prefix):])
				if name != "" {
					return titleCase(name)
				}
			}
		}
	}
	for _, rule := range p.mapping.EpicKeywords {
		for _, label := range labels {
			if strings.Contains(strings.ToLower(label), rule.Keyword) {
				return rule.Epic
			}
		}
	}
	return p.mapping.DefaultEpic
}

// inferPriority scans the keyword table in order; the first rule matching
// any label wins, so table order is the precedence.
func (p *Processor) inferPriority(labels []string) Priority {
	for _, rule := range p.mapping.PriorityKeywords {
		for _, label := range labels {
			if strings.Contains(strings.ToLower(label), rule.Keyword) {
				return rule.Priority
			}
		}
	}
	return p.mapping.DefaultPriority
}

func inferStatus(state string, contentType github.ContentType) Status {
	switch state {
	case "CLOSED", "MERGED":
		return StatusDone
	case "OPEN":
		if contentType == github.ContentPullRequest {
			return StatusInReview
		}
		return StatusInProgress
	case "DRAFT":
		return StatusInProgress
	}
	return StatusToDo
}

// durationDays computes the whole-day span, never below 1. The fallback
// covers the degenerate case of both dates missing.
func durationDays(start, due time.Time, fallback int) int {
	if start.IsZero() || due.IsZero() {
		return fallback
	}
	days := int(due.Sub(start).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// fieldValueString renders any field value as text, for the custom-field bag
// and for canonical attributes that arrive as text or single-select.
func fieldValueString(fv github.FieldValue) string {
	switch fv.Kind {
	case github.KindText:
		return fv.Text
	case github.KindSingleSelect:
		return fv.Option
	case github.KindDate:
		if fv.Date != nil {
			return fv.Date.Format("2006-01-02")
		}
		return ""
	case github.KindNumber:
		return strconv.FormatFloat(fv.Number, 'f', -1, 64)
	case github.KindMilestone:
		if fv.Milestone != nil {
			return fv.Milestone.Title
		}
		return ""
	case github.KindIteration:
		if fv.Iteration != nil {
			return fv.Iteration.Title
		}
		return ""
	}
	return fmt.Sprintf("%v", fv)
}

// titleCase uppercases the first rune only; label remainders like
// "frontend work" become "Frontend work".
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
