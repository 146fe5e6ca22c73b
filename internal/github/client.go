// SPDX-License-Identifier: AGPL-3.0-or-later
package github

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// DefaultPageSize caps how many board items one fetch requests.
const DefaultPageSize = 100

// NotFoundError reports that an organization has no project with the
// requested number.
type NotFoundError struct {
	Org    string
	Number int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project %d not found in organization %q", e.Number, e.Org)
}

// graphQLClient is the slice of githubv4.Client the board client touches.
type graphQLClient interface {
	Query(ctx context.Context, q interface{}, variables map[string]interface{}) error
}

// Client fetches Projects-v2 boards.
type Client struct {
	gql   graphQLClient
	warnf func(format string, args ...any)
}

// NewClient builds a Client over the GitHub GraphQL endpoint using a bearer
// token. warnf receives non-fatal diagnostics (pagination gaps); nil means
// warnings are dropped.
func NewClient(token string, warnf func(format string, args ...any)) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)
	return newClient(githubv4.NewClient(httpClient), warnf)
}

func newClient(gql graphQLClient, warnf func(format string, args ...any)) *Client {
	if warnf == nil {
		warnf = func(string, ...any) {}
	}
	return &Client{gql: gql, warnf: warnf}
}

// ResolveToken returns the configured token, falling back to the locally
// installed gh CLI when it is empty. Having neither is a configuration error.
func ResolveToken(ctx context.Context, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	ghPath, err := exec.LookPath("gh")
	if err != nil {
		return "", errors.New("GITHUB_TOKEN is not set and the gh CLI is not installed")
	}

	out, err := exec.CommandContext(ctx, ghPath, "auth", "token").Output()
	if err != nil {
		return "", fmt.Errorf("GITHUB_TOKEN is not set and `gh auth token` failed: %w", err)
	}
	token := strings.TrimSpace(string(out))
	if token == "" {
		return "", errors.New("GITHUB_TOKEN is not set and `gh auth token` returned nothing")
	}
	return token, nil
}

// GetProject fetches a board's metadata and field definitions.
func (c *Client) GetProject(ctx context.Context, org string, number int) (*Project, error) {
	var q struct {
		Organization struct {
			ProjectV2 struct {
				ID               githubv4.ID
				Number           githubv4.Int
				Title            githubv4.String
				ShortDescription githubv4.String
				Fields           struct {
					Nodes []projectFieldNode
				} `graphql:"fields(first: 50)"`
			} `graphql:"projectV2(number: $number)"`
		} `graphql:"organization(login: $org)"`
	}

	vars := map[string]interface{}{
		"org":    githubv4.String(org),
		"number": githubv4.Int(number),
	}
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		if isNotFound(err) {
			return nil, &NotFoundError{Org: org, Number: number}
		}
		return nil, fmt.Errorf("fetching project %d in %s: %w", number, org, err)
	}

	p := &Project{
		ID:          idString(q.Organization.ProjectV2.ID),
		Number:      int(q.Organization.ProjectV2.Number),
		Title:       string(q.Organization.ProjectV2.Title),
		Description: string(q.Organization.ProjectV2.ShortDescription),
	}
	for _, f := range q.Organization.ProjectV2.Fields.Nodes {
		p.Fields = append(p.Fields, convertFieldDef(f))
	}
	return p, nil
}

// GetProjectItems fetches the first page of a board's items. Cursor
// pagination is deliberately not implemented; when the board holds more
// items than one page, the gap is reported through warnf and the first page
// is returned.
func (c *Client) GetProjectItems(ctx context.Context, projectID string, pageSize int) ([]Item, error) {
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}

	var q struct {
		Node struct {
			ProjectV2 struct {
				Items struct {
					TotalCount githubv4.Int
					PageInfo   struct {
						HasNextPage githubv4.Boolean
					}
					Nodes []itemNode
				} `graphql:"items(first: $pageSize)"`
			} `graphql:"... on ProjectV2"`
		} `graphql:"node(id: $id)"`
	}

	vars := map[string]interface{}{
		"id":       githubv4.ID(projectID),
		"pageSize": githubv4.Int(pageSize),
	}
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("fetching project items: %w", err)
	}

	items := q.Node.ProjectV2.Items
	if bool(items.PageInfo.HasNextPage) {
		c.warnf("project has %d items but only the first %d were fetched; remaining pages are skipped",
			int(items.TotalCount), len(items.Nodes))
	}

	out := make([]Item, 0, len(items.Nodes))
	for _, n := range items.Nodes {
		out = append(out, convertItem(n))
	}
	return out, nil
}

// GetOrganizationProjects lists the organization's boards, used as a
// diagnostic when the requested project number does not exist.
func (c *Client) GetOrganizationProjects(ctx context.Context, org string) ([]Project, error) {
	var q struct {
		Organization struct {
			ProjectsV2 struct {
				Nodes []struct {
					ID               githubv4.ID
					Number           githubv4.Int
					Title            githubv4.String
					ShortDescription githubv4.String
				}
			} `graphql:"projectsV2(first: 50)"`
		} `graphql:"organization(login: $org)"`
	}

	vars := map[string]interface{}{"org": githubv4.String(org)}
	if err := c.gql.Query(ctx, &q, vars); err != nil {
		return nil, fmt.Errorf("listing projects in %s: %w", org, err)
	}

	out := make([]Project, 0, len(q.Organization.ProjectsV2.Nodes))
	for _, n := range q.Organization.ProjectsV2.Nodes {
		out = append(out, Project{
			ID:          idString(n.ID),
			Number:      int(n.Number),
			Title:       string(n.Title),
			Description: string(n.ShortDescription),
		})
	}
	return out, nil
}

// isNotFound classifies the GraphQL "could not resolve" errors the API
// returns for nonexistent projects or organizations.
func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "could not resolve")
}
