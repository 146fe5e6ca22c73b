// SPDX-License-Identifier: AGPL-3.0-or-later
package processor

import "strings"

// Priority is the canonical priority scale. Rank orders Critical first.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// Rank returns the sort rank of a priority, lower meaning more urgent.
// Unknown priorities sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Status is the canonical workflow status.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusInReview   Status = "In Review"
	StatusDone       Status = "Done"
)

// Canonical names the attributes a board field can map onto.
type Canonical string

const (
	FieldEpic       Canonical = "epic"
	FieldPriority   Canonical = "priority"
	FieldStatus     Canonical = "status"
	FieldStartDate  Canonical = "startDate"
	FieldDueDate    Canonical = "dueDate"
	FieldEstimation Canonical = "estimation"
	FieldSprint     Canonical = "sprint"
)

// KeywordRule maps a label keyword onto a priority. Rules are evaluated in
// slice order and the first match wins.
type KeywordRule struct {
	Keyword  string
	Priority Priority
}

// EpicRule maps a label keyword onto an epic name.
type EpicRule struct {
	Keyword string
	Epic    string
}

// Mapping is the full field- and label-interpretation table. It is plain
// data passed into New so tests can substitute alternate tables.
type Mapping struct {
	// FieldVariants maps each canonical attribute to lowercase substrings
	// matched against board field names.
	FieldVariants map[Canonical][]string
	// fieldOrder fixes the probe order so a field name matching several
	// canonicals resolves deterministically.
	FieldOrder []Canonical

	PriorityKeywords []KeywordRule
	EpicPrefixes     []string
	EpicKeywords     []EpicRule

	// PriorityDays gives the synthesized schedule length per priority when
	// no estimation is present.
	PriorityDays map[Priority]int
	// DefaultDays applies when the priority has no entry in PriorityDays.
	DefaultDays int
	// EstimateDayFactor converts story points to days.
	EstimateDayFactor float64

	DefaultEpic     string
	DefaultPriority Priority
}

// DefaultMapping returns the production interpretation table.
func DefaultMapping() Mapping {
	return Mapping{
		FieldVariants: map[Canonical][]string{
			FieldEpic:       {"epic"},
			FieldPriority:   {"priority", "prio"},
			FieldStatus:     {"status"},
			FieldStartDate:  {"start"},
			FieldDueDate:    {"due", "end date", "target"},
			FieldEstimation: {"estimat", "story point", "points", "size"},
			FieldSprint:     {"sprint", "iteration"},
		},
		FieldOrder: []Canonical{
			FieldEpic, FieldPriority, FieldStatus,
			FieldStartDate, FieldDueDate, FieldEstimation, FieldSprint,
		},
		PriorityKeywords: []KeywordRule{
			{"p0", PriorityCritical},
			{"critical", PriorityCritical},
			{"blocker", PriorityCritical},
			{"p1", PriorityHigh},
			{"high", PriorityHigh},
			{"urgent", PriorityHigh},
			{"p2", PriorityMedium},
			{"medium", PriorityMedium},
			{"p3", PriorityLow},
			{"low", PriorityLow},
		},
		EpicPrefixes: []string{"epic:", "feature:", "area:"},
		EpicKeywords: []EpicRule{
			{"frontend", "Frontend"},
			{"backend", "Backend"},
			{"api", "API"},
			{"infrastructure", "Infrastructure"},
			{"infra", "Infrastructure"},
			{"database", "Database"},
			{"docs", "Documentation"},
			{"documentation", "Documentation"},
			{"design", "Design"},
		},
		PriorityDays: map[Priority]int{
			PriorityCritical: 3,
			PriorityHigh:     5,
			PriorityMedium:   7,
			PriorityLow:      14,
		},
		DefaultDays:       7,
		EstimateDayFactor: 1.5,
		DefaultEpic:       "Other",
		DefaultPriority:   PriorityMedium,
	}
}

// MatchField resolves a board field name to a canonical attribute by
// case-insensitive substring match, probing canonicals in FieldOrder.
func (m Mapping) MatchField(name string) (Canonical, bool) {
	lower := strings.ToLower(name)
	for _, canonical := range m.FieldOrder {
		for _, variant := range m.FieldVariants[canonical] {
			if strings.Contains(lower, variant) {
				return canonical, true
			}
		}
	}
	return "", false
}

// normalizePriority maps a field value onto the canonical scale.
func normalizePriority(raw string) (Priority, bool) {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "critical"), strings.Contains(lower, "p0"):
		return PriorityCritical, true
	case strings.Contains(lower, "high"), strings.Contains(lower, "urgent"), strings.Contains(lower, "p1"):
		return PriorityHigh, true
	case strings.Contains(lower, "medium"), strings.Contains(lower, "p2"):
		return PriorityMedium, true
	case strings.Contains(lower, "low"), strings.Contains(lower, "p3"):
		return PriorityLow, true
	}
	return "", false
}

// normalizeStatus maps a field value onto the canonical workflow statuses.
// Unrecognized values are carried verbatim so nothing is lost.
func normalizeStatus(raw string) Status {
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "done"), strings.Contains(lower, "complete"), strings.Contains(lower, "closed"):
		return StatusDone
	case strings.Contains(lower, "review"):
		return StatusInReview
	case strings.Contains(lower, "progress"), strings.Contains(lower, "doing"):
		return StatusInProgress
	case strings.Contains(lower, "todo"), strings.Contains(lower, "to do"), strings.Contains(lower, "backlog"):
		return StatusToDo
	}
	return Status(raw)
}
