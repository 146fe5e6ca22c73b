// SPDX-License-Identifier: AGPL-3.0-or-later

// Package github fetches GitHub Projects-v2 boards over the GraphQL API and
// exposes them as normalized types independent of the wire shapes.
package github

import "time"

// Project is a Projects-v2 board with its field definitions.
type Project struct {
	ID          string
	Number      int
	Title       string
	Description string
	Fields      []FieldDef
}

// FieldDef is a project field definition.
type FieldDef struct {
	ID         string
	Name       string
	DataType   string // TEXT, SINGLE_SELECT, DATE, NUMBER, ITERATION, ...
	Options    []string
	Iterations []IterationWindow
}

// IterationWindow is one planned iteration of an iteration field.
type IterationWindow struct {
	Title     string
	StartDate string // YYYY-MM-DD
	Duration  int    // days
}

// ContentType distinguishes the three kinds of board-item content.
type ContentType string

const (
	ContentIssue       ContentType = "Issue"
	ContentPullRequest ContentType = "PullRequest"
	ContentDraftIssue  ContentType = "DraftIssue"
)

// Item is one board entry. Content is nil when the backing content is
// inaccessible (private or redacted); such items cannot be rendered.
type Item struct {
	ID      string
	Content *Content
	Fields  []FieldValue
}

// Content is the issue, pull request, or draft note behind an item.
// State is OPEN, CLOSED, MERGED, or DRAFT (draft pull requests and notes).
type Content struct {
	Type      ContentType
	Number    int
	Title     string
	URL       string
	State     string
	Labels    []string
	Assignees []string
	CreatedAt time.Time
	ClosedAt  *time.Time
	Milestone *Milestone
}

// Milestone is a repository milestone reference.
type Milestone struct {
	Title string
	DueOn *time.Time
}

// FieldValueKind enumerates the six field-value kinds a board item can carry.
type FieldValueKind string

const (
	KindText         FieldValueKind = "text"
	KindSingleSelect FieldValueKind = "single-select"
	KindDate         FieldValueKind = "date"
	KindNumber       FieldValueKind = "number"
	KindMilestone    FieldValueKind = "milestone"
	KindIteration    FieldValueKind = "iteration"
)

// FieldValue is a tagged union over the field-value kinds. Exactly the
// members implied by Kind are meaningful; the rest are zero.
type FieldValue struct {
	FieldID   string
	FieldName string
	Kind      FieldValueKind

	Text      string
	Option    string
	Date      *time.Time
	Number    float64
	Milestone *Milestone
	Iteration *IterationWindow
}
