// SPDX-License-Identifier: AGPL-3.0-or-later
package github

import (
	"net/url"
	"testing"
	"time"

	"github.com/shurcooL/githubv4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURI(t *testing.T, raw string) githubv4.URI {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return githubv4.URI{URL: u}
}

func TestConvertItemIssue(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	closed := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	due := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	var n itemNode
	n.ID = "ITEM_1"
	n.Content.Typename = "Issue"
	n.Content.Issue = issueContentNode{
		Number:    42,
		Title:     "Fix flaky sync",
		URL:       mustURI(t, "https://github.com/acme/repo/issues/42"),
		State:     "CLOSED",
		CreatedAt: githubv4.DateTime{Time: created},
		ClosedAt:  &githubv4.DateTime{Time: closed},
		Milestone: &milestoneNode{Title: "v1.0", DueOn: &githubv4.DateTime{Time: due}},
	}
	n.Content.Issue.Labels.Nodes = []struct{ Name githubv4.String }{{Name: "bug"}, {Name: "backend"}}
	n.Content.Issue.Assignees.Nodes = []struct{ Login githubv4.String }{{Login: "jdoe"}}

	item := convertItem(n)

	assert.Equal(t, "ITEM_1", item.ID)
	require.NotNil(t, item.Content)
	assert.Equal(t, ContentIssue, item.Content.Type)
	assert.Equal(t, 42, item.Content.Number)
	assert.Equal(t, "Fix flaky sync", item.Content.Title)
	assert.Equal(t, "https://github.com/acme/repo/issues/42", item.Content.URL)
	assert.Equal(t, "CLOSED", item.Content.State)
	assert.Equal(t, []string{"bug", "backend"}, item.Content.Labels)
	assert.Equal(t, []string{"jdoe"}, item.Content.Assignees)
	assert.Equal(t, created, item.Content.CreatedAt)
	require.NotNil(t, item.Content.ClosedAt)
	assert.Equal(t, closed, *item.Content.ClosedAt)
	require.NotNil(t, item.Content.Milestone)
	assert.Equal(t, "v1.0", item.Content.Milestone.Title)
}

func TestConvertItemDraftPullRequest(t *testing.T) {
	var n itemNode
	n.Content.Typename = "PullRequest"
	n.Content.PullRequest = pullRequestContentNode{
		Number:  7,
		Title:   "WIP refactor",
		URL:     mustURI(t, "https://github.com/acme/repo/pull/7"),
		State:   "OPEN",
		IsDraft: true,
	}

	item := convertItem(n)
	require.NotNil(t, item.Content)
	assert.Equal(t, ContentPullRequest, item.Content.Type)
	assert.Equal(t, "DRAFT", item.Content.State)
}

func TestConvertItemDraftNote(t *testing.T) {
	created := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	var n itemNode
	n.Content.Typename = "DraftIssue"
	n.Content.Draft = draftContentNode{
		Title:     "Sketch the migration plan",
		CreatedAt: githubv4.DateTime{Time: created},
	}

	item := convertItem(n)
	require.NotNil(t, item.Content)
	assert.Equal(t, ContentDraftIssue, item.Content.Type)
	assert.Equal(t, "DRAFT", item.Content.State)
	assert.Equal(t, created, item.Content.CreatedAt)
}

func TestConvertItemInaccessibleContent(t *testing.T) {
	var n itemNode
	n.Content.Typename = "PrivateContent"

	item := convertItem(n)
	assert.Nil(t, item.Content)
}

func TestConvertFieldValueKinds(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	var text fieldValueNode
	text.Typename = "ProjectV2ItemFieldTextValue"
	text.Text.Text = "Ingestion"
	text.Text.Field.Common.ID = githubv4.ID("F_1")
	text.Text.Field.Common.Name = "Epic"

	var sel fieldValueNode
	sel.Typename = "ProjectV2ItemFieldSingleSelectValue"
	sel.SingleSelect.Name = "High"
	sel.SingleSelect.Field.Common.Name = "Priority"

	var dt fieldValueNode
	dt.Typename = "ProjectV2ItemFieldDateValue"
	d := githubv4.Date{Time: date}
	dt.Date.Date = &d
	dt.Date.Field.Common.Name = "Due Date"

	var num fieldValueNode
	num.Typename = "ProjectV2ItemFieldNumberValue"
	num.Number.Number = 8
	num.Number.Field.Common.Name = "Estimate"

	var ms fieldValueNode
	ms.Typename = "ProjectV2ItemFieldMilestoneValue"
	ms.Milestone.Milestone.Title = "Beta"

	var iter fieldValueNode
	iter.Typename = "ProjectV2ItemFieldIterationValue"
	iter.Iteration.Title = "Sprint 12"
	iter.Iteration.StartDate = "2025-06-02"
	iter.Iteration.Duration = 14
	iter.Iteration.Field.Common.Name = "Sprint"

	tests := []struct {
		name string
		node fieldValueNode
		want FieldValue
	}{
		{"text", text, FieldValue{FieldID: "F_1", FieldName: "Epic", Kind: KindText, Text: "Ingestion"}},
		{"single-select", sel, FieldValue{FieldName: "Priority", Kind: KindSingleSelect, Option: "High"}},
		{"date", dt, FieldValue{FieldName: "Due Date", Kind: KindDate, Date: &date}},
		{"number", num, FieldValue{FieldName: "Estimate", Kind: KindNumber, Number: 8}},
		{"milestone", ms, FieldValue{Kind: KindMilestone, Milestone: &Milestone{Title: "Beta"}}},
		{"iteration", iter, FieldValue{FieldName: "Sprint", Kind: KindIteration, Iteration: &IterationWindow{Title: "Sprint 12", StartDate: "2025-06-02", Duration: 14}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := convertFieldValue(tt.node)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertFieldValueUnknownKind(t *testing.T) {
	var n fieldValueNode
	n.Typename = "ProjectV2ItemFieldLabelValue"

	_, ok := convertFieldValue(n)
	assert.False(t, ok)
}

func TestConvertFieldDef(t *testing.T) {
	var n projectFieldNode
	n.Typename = "ProjectV2SingleSelectField"
	n.Common.ID = githubv4.ID("F_2")
	n.Common.Name = "Status"
	n.Common.DataType = "SINGLE_SELECT"
	n.SingleSelect.Options = []struct{ Name githubv4.String }{{Name: "To Do"}, {Name: "Done"}}

	def := convertFieldDef(n)
	assert.Equal(t, "F_2", def.ID)
	assert.Equal(t, "Status", def.Name)
	assert.Equal(t, "SINGLE_SELECT", def.DataType)
	assert.Equal(t, []string{"To Do", "Done"}, def.Options)
}
