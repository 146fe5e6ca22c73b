// SPDX-License-Identifier: AGPL-3.0-or-later
package github

import (
	"fmt"
	"time"

	"github.com/shurcooL/githubv4"
)

// Wire shapes for the GraphQL queries. Every union the API exposes is
// expanded as an inline fragment so an unmapped kind shows up as a gap here
// rather than as a silent drop at runtime.

// fieldRef resolves the field behind a value through the ProjectV2FieldCommon
// interface.
type fieldRef struct {
	Common struct {
		ID   githubv4.ID
		Name githubv4.String
	} `graphql:"... on ProjectV2FieldCommon"`
}

type projectFieldNode struct {
	Typename string `graphql:"__typename"`
	Common   struct {
		ID       githubv4.ID
		Name     githubv4.String
		DataType githubv4.String
	} `graphql:"... on ProjectV2FieldCommon"`
	SingleSelect struct {
		Options []struct {
			Name githubv4.String
		}
	} `graphql:"... on ProjectV2SingleSelectField"`
	Iteration struct {
		Configuration struct {
			Iterations []struct {
				Title     githubv4.String
				StartDate githubv4.String
				Duration  githubv4.Int
			}
		}
	} `graphql:"... on ProjectV2IterationField"`
}

type milestoneNode struct {
	Title githubv4.String
	DueOn *githubv4.DateTime
}

type issueContentNode struct {
	Number    githubv4.Int
	Title     githubv4.String
	URL       githubv4.URI
	State     githubv4.String
	CreatedAt githubv4.DateTime
	ClosedAt  *githubv4.DateTime
	Labels    struct {
		Nodes []struct {
			Name githubv4.String
		}
	} `graphql:"labels(first: 20)"`
	Assignees struct {
		Nodes []struct {
			Login githubv4.String
		}
	} `graphql:"assignees(first: 10)"`
	Milestone *milestoneNode
}

type pullRequestContentNode struct {
	Number    githubv4.Int
	Title     githubv4.String
	URL       githubv4.URI
	State     githubv4.String
	IsDraft   githubv4.Boolean
	CreatedAt githubv4.DateTime
	ClosedAt  *githubv4.DateTime
	Labels    struct {
		Nodes []struct {
			Name githubv4.String
		}
	} `graphql:"labels(first: 20)"`
	Assignees struct {
		Nodes []struct {
			Login githubv4.String
		}
	} `graphql:"assignees(first: 10)"`
	Milestone *milestoneNode
}

type draftContentNode struct {
	Title     githubv4.String
	CreatedAt githubv4.DateTime
}

type fieldValueNode struct {
	Typename string `graphql:"__typename"`
	Text     struct {
		Text  githubv4.String
		Field fieldRef
	} `graphql:"... on ProjectV2ItemFieldTextValue"`
	SingleSelect struct {
		Name  githubv4.String
		Field fieldRef
	} `graphql:"... on ProjectV2ItemFieldSingleSelectValue"`
	Date struct {
		Date  *githubv4.Date
		Field fieldRef
	} `graphql:"... on ProjectV2ItemFieldDateValue"`
	Number struct {
		Number githubv4.Float
		Field  fieldRef
	} `graphql:"... on ProjectV2ItemFieldNumberValue"`
	Milestone struct {
		Milestone milestoneNode
		Field     fieldRef
	} `graphql:"... on ProjectV2ItemFieldMilestoneValue"`
	Iteration struct {
		Title     githubv4.String
		StartDate githubv4.String
		Duration  githubv4.Int
		Field     fieldRef
	} `graphql:"... on ProjectV2ItemFieldIterationValue"`
}

type itemNode struct {
	ID      githubv4.ID
	Content struct {
		Typename    string                 `graphql:"__typename"`
		Issue       issueContentNode       `graphql:"... on Issue"`
		PullRequest pullRequestContentNode `graphql:"... on PullRequest"`
		Draft       draftContentNode       `graphql:"... on DraftIssue"`
	}
	FieldValues struct {
		Nodes []fieldValueNode
	} `graphql:"fieldValues(first: 30)"`
}

func convertFieldDef(n projectFieldNode) FieldDef {
	def := FieldDef{
		ID:       idString(n.Common.ID),
		Name:     string(n.Common.Name),
		DataType: string(n.Common.DataType),
	}
	for _, opt := range n.SingleSelect.Options {
		def.Options = append(def.Options, string(opt.Name))
	}
	for _, it := range n.Iteration.Configuration.Iterations {
		def.Iterations = append(def.Iterations, IterationWindow{
			Title:     string(it.Title),
			StartDate: string(it.StartDate),
			Duration:  int(it.Duration),
		})
	}
	return def
}

func convertItem(n itemNode) Item {
	item := Item{ID: idString(n.ID)}

	switch n.Content.Typename {
	case "Issue":
		item.Content = convertIssue(n.Content.Issue)
	case "PullRequest":
		item.Content = convertPullRequest(n.Content.PullRequest)
	case "DraftIssue":
		item.Content = &Content{
			Type:      ContentDraftIssue,
			Title:     string(n.Content.Draft.Title),
			State:     "DRAFT",
			CreatedAt: n.Content.Draft.CreatedAt.Time,
		}
	default:
		// Private or redacted content; leave Content nil.
	}

	for _, fv := range n.FieldValues.Nodes {
		if v, ok := convertFieldValue(fv); ok {
			item.Fields = append(item.Fields, v)
		}
	}

	return item
}

func convertIssue(n issueContentNode) *Content {
	return &Content{
		Type:      ContentIssue,
		Number:    int(n.Number),
		Title:     string(n.Title),
		URL:       uriString(n.URL),
		State:     string(n.State),
		Labels:    labelNames(n.Labels.Nodes),
		Assignees: loginNames(n.Assignees.Nodes),
		CreatedAt: n.CreatedAt.Time,
		ClosedAt:  timePtr(n.ClosedAt),
		Milestone: convertMilestone(n.Milestone),
	}
}

func convertPullRequest(n pullRequestContentNode) *Content {
	state := string(n.State)
	if bool(n.IsDraft) && state == "OPEN" {
		state = "DRAFT"
	}
	return &Content{
		Type:      ContentPullRequest,
		Number:    int(n.Number),
		Title:     string(n.Title),
		URL:       uriString(n.URL),
		State:     state,
		Labels:    labelNames(n.Labels.Nodes),
		Assignees: loginNames(n.Assignees.Nodes),
		CreatedAt: n.CreatedAt.Time,
		ClosedAt:  timePtr(n.ClosedAt),
		Milestone: convertMilestone(n.Milestone),
	}
}

// convertFieldValue maps one wire value onto the tagged union. The second
// return is false for kinds that carry no data (empty fragments on unknown
// typenames).
func convertFieldValue(n fieldValueNode) (FieldValue, bool) {
	switch n.Typename {
	case "ProjectV2ItemFieldTextValue":
		return FieldValue{
			FieldID:   idString(n.Text.Field.Common.ID),
			FieldName: string(n.Text.Field.Common.Name),
			Kind:      KindText,
			Text:      string(n.Text.Text),
		}, true
	case "ProjectV2ItemFieldSingleSelectValue":
		return FieldValue{
			FieldID:   idString(n.SingleSelect.Field.Common.ID),
			FieldName: string(n.SingleSelect.Field.Common.Name),
			Kind:      KindSingleSelect,
			Option:    string(n.SingleSelect.Name),
		}, true
	case "ProjectV2ItemFieldDateValue":
		v := FieldValue{
			FieldID:   idString(n.Date.Field.Common.ID),
			FieldName: string(n.Date.Field.Common.Name),
			Kind:      KindDate,
		}
		if n.Date.Date != nil {
			t := n.Date.Date.Time
			v.Date = &t
		}
		return v, true
	case "ProjectV2ItemFieldNumberValue":
		return FieldValue{
			FieldID:   idString(n.Number.Field.Common.ID),
			FieldName: string(n.Number.Field.Common.Name),
			Kind:      KindNumber,
			Number:    float64(n.Number.Number),
		}, true
	case "ProjectV2ItemFieldMilestoneValue":
		return FieldValue{
			FieldID:   idString(n.Milestone.Field.Common.ID),
			FieldName: string(n.Milestone.Field.Common.Name),
			Kind:      KindMilestone,
			Milestone: &Milestone{
				Title: string(n.Milestone.Milestone.Title),
				DueOn: timePtr(n.Milestone.Milestone.DueOn),
			},
		}, true
	case "ProjectV2ItemFieldIterationValue":
		return FieldValue{
			FieldID:   idString(n.Iteration.Field.Common.ID),
			FieldName: string(n.Iteration.Field.Common.Name),
			Kind:      KindIteration,
			Iteration: &IterationWindow{
				Title:     string(n.Iteration.Title),
				StartDate: string(n.Iteration.StartDate),
				Duration:  int(n.Iteration.Duration),
			},
		}, true
	}
	return FieldValue{}, false
}

func convertMilestone(n *milestoneNode) *Milestone {
	if n == nil {
		return nil
	}
	return &Milestone{Title: string(n.Title), DueOn: timePtr(n.DueOn)}
}

func labelNames(nodes []struct{ Name githubv4.String }) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, string(n.Name))
	}
	return out
}

func loginNames(nodes []struct{ Login githubv4.String }) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, string(n.Login))
	}
	return out
}

func uriString(u githubv4.URI) string {
	if u.URL == nil {
		return ""
	}
	return u.String()
}

func timePtr(dt *githubv4.DateTime) *time.Time {
	if dt == nil {
		return nil
	}
	t := dt.Time
	return &t
}

func idString(id githubv4.ID) string {
	if id == nil {
		return ""
	}
	if s, ok := id.(string); ok {
		return s
	}
	return fmt.Sprint(id)
}
