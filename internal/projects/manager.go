// Package projects manages tasks on a GitHub Projects v2 board: listing and
// searching items, moving them between status columns, and commenting on the
// issues behind them.
package projects

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ai-janitor/ghproj/internal/ghurl"
	"github.com/ai-janitor/ghproj/internal/github"
)

// Manager operates on one board, identified by its project node ID.
type Manager struct {
	client    *github.Client
	projectID string
}

// NewManager creates a Manager for the given project node ID (PVT_ format).
func NewManager(client *github.Client, projectID string) *Manager {
	return &Manager{client: client, projectID: projectID}
}

// ProjectID returns the board's node ID.
func (m *Manager) ProjectID() string {
	return m.projectID
}

// Fields returns the board's field definitions. Field types outside the
// plain and single select fragments are dropped.
func (m *Manager) Fields(ctx context.Context) ([]Field, error) {
	var result struct {
		Node *struct {
			Fields struct {
				Nodes []Field `json:"nodes"`
			} `json:"fields"`
		} `json:"node"`
	}
	variables := map[string]interface{}{"projectId": m.projectID}
	if err := m.client.Do(ctx, queryProjectFields, variables, &result); err != nil {
		return nil, err
	}
	if result.Node == nil {
		return nil, fmt.Errorf("project %s: %w", m.projectID, github.ErrNotFound)
	}

	fields := make([]Field, 0, len(result.Node.Fields.Nodes))
	for _, f := range result.Node.Fields.Nodes {
		if f.ID == "" {
			continue
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Statuses returns the option names of the board's Status field, in column
// order. Boards without a Status field return an empty slice.
func (m *Manager) Statuses(ctx context.Context) ([]string, error) {
	fields, err := m.Fields(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		if f.Name != StatusFieldName || len(f.Options) == 0 {
			continue
		}
		names := make([]string, len(f.Options))
		for i, opt := range f.Options {
			names[i] = opt.Name
		}
		return names, nil
	}
	return []string{}, nil
}

// Items returns every item on the board as a flattened Task, walking the
// cursor in pages of 100. Any failed page fails the whole call; partial
// boards are never returned.
func (m *Manager) Items(ctx context.Context) ([]Task, error) {
	allTasks := make([]Task, 0)
	cursor := ""

	for {
		variables := map[string]interface{}{
			"projectId": m.projectID,
		}
		if cursor != "" {
			variables["cursor"] = cursor
		}

		var result itemsPage
		if err := m.client.Do(ctx, queryProjectItems, variables, &result); err != nil {
			return nil, err
		}
		if result.Node == nil {
			return nil, fmt.Errorf("project %s: %w", m.projectID, github.ErrNotFound)
		}

		for _, node := range result.Node.Items.Nodes {
			allTasks = append(allTasks, newTask(node))
		}

		if !result.Node.Items.PageInfo.HasNextPage {
			break
		}
		cursor = result.Node.Items.PageInfo.EndCursor
	}

	return allTasks, nil
}

// Item fetches one board item with its issue comments.
func (m *Manager) Item(ctx context.Context, itemID string) (*TaskDetail, error) {
	var result struct {
		Node *itemNode `json:"node"`
	}
	variables := map[string]interface{}{"itemId": itemID}
	if err := m.client.Do(ctx, queryProjectItem, variables, &result); err != nil {
		return nil, err
	}
	// A null node is a missing ID; an empty one is a node of another type.
	if result.Node == nil || result.Node.ID == "" {
		return nil, fmt.Errorf("item %s: %w", itemID, github.ErrNotFound)
	}

	detail := &TaskDetail{Task: newTask(*result.Node)}
	for _, c := range result.Node.Content.Comments.Nodes {
		comment := Comment{Body: c.Body, CreatedAt: c.CreatedAt}
		if c.Author != nil {
			comment.Author = c.Author.Login
		}
		detail.Comments = append(detail.Comments, comment)
	}
	return detail, nil
}

// Move sets the item's Status column. The target status must match an
// option name exactly; unknown names fail with ErrInvalidArgument listing
// what the board offers.
func (m *Manager) Move(ctx context.Context, itemID, status string) error {
	target, err := m.statusTarget(ctx, status)
	if err != nil {
		return err
	}
	return m.moveTo(ctx, itemID, target)
}

// MoveMany moves several items to the same status. Items fail or succeed
// independently; one failed move never aborts the rest. With a non-empty
// comment, each successfully moved item's issue also gets the comment, and
// comment failures are recorded separately from move failures.
func (m *Manager) MoveMany(ctx context.Context, itemIDs []string, status, comment string) ([]MoveOutcome, error) {
	target, err := m.statusTarget(ctx, status)
	if err != nil {
		return nil, err
	}

	// Resolve issue URLs up front when commenting. Draft items have no URL
	// and silently skip the comment.
	urls := make(map[string]string)
	if comment != "" {
		tasks, err := m.Items(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			urls[t.ID] = t.URL
		}
	}

	outcomes := make([]MoveOutcome, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		outcome := MoveOutcome{ItemID: itemID}
		if err := m.moveTo(ctx, itemID, target); err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}
		if url := urls[itemID]; comment != "" && url != "" {
			if err := m.CommentURL(ctx, url, comment); err != nil {
				outcome.CommentErr = err
			} else {
				outcome.Commented = true
			}
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

type statusTarget struct {
	fieldID  string
	optionID string
}

// statusTarget resolves the Status field ID and the option ID for status.
func (m *Manager) statusTarget(ctx context.Context, status string) (statusTarget, error) {
	fields, err := m.Fields(ctx)
	if err != nil {
		return statusTarget{}, err
	}

	for _, f := range fields {
		if f.Name != StatusFieldName || len(f.Options) == 0 {
			continue
		}
		for _, opt := range f.Options {
			if opt.Name == status {
				return statusTarget{fieldID: f.ID, optionID: opt.ID}, nil
			}
		}
		names := make([]string, len(f.Options))
		for i, opt := range f.Options {
			names[i] = opt.Name
		}
		return statusTarget{}, fmt.Errorf("%w: status %q not found, available: %s",
			github.ErrInvalidArgument, status, strings.Join(names, ", "))
	}
	return statusTarget{}, errors.New("project has no Status field")
}

func (m *Manager) moveTo(ctx context.Context, itemID string, target statusTarget) error {
	variables := map[string]interface{}{
		"projectId": m.projectID,
		"itemId":    itemID,
		"fieldId":   target.fieldID,
		"optionId":  target.optionID,
	}
	var result struct {
		Update struct {
			Item struct {
				ID string `json:"id"`
			} `json:"projectV2Item"`
		} `json:"updateProjectV2ItemFieldValue"`
	}
	return m.client.Do(ctx, mutationMoveItem, variables, &result)
}

// Comment posts body as a comment on an issue or pull request.
func (m *Manager) Comment(ctx context.Context, owner, repo string, number int, body string) error {
	return PostIssueComment(ctx, m.client, owner, repo, number, body)
}

// CommentURL posts body as a comment on the issue behind a full GitHub
// issue or pull request URL.
func (m *Manager) CommentURL(ctx context.Context, issueURL, body string) error {
	return PostComment(ctx, m.client, issueURL, body)
}

// PostComment posts body as a comment on the issue behind a full GitHub
// issue or pull request URL. Unlike the Manager methods it needs no board.
func PostComment(ctx context.Context, client *github.Client, issueURL, body string) error {
	owner, repo, number, err := ghurl.ParseIssue(issueURL)
	if err != nil {
		return fmt.Errorf("%w: %v", github.ErrInvalidArgument, err)
	}
	return PostIssueComment(ctx, client, owner, repo, number, body)
}

// PostIssueComment posts body as a comment on the numbered issue or pull
// request of owner/repo.
func PostIssueComment(ctx context.Context, client *github.Client, owner, repo string, number int, body string) error {
	p := fmt.Sprintf("/repos/%s/%s/issues/%d/comments", owner, repo, number)
	payload := map[string]string{"body": body}
	return client.REST(ctx, http.MethodPost, p, payload, nil)
}

// ResolveProject resolves a board's node ID and title from its owner login
// and project number, as they appear in project URLs. org selects the
// organization namespace instead of the user one.
func ResolveProject(ctx context.Context, client *github.Client, owner string, number int, org bool) (*ProjectRef, error) {
	variables := map[string]interface{}{"login": owner, "number": number}

	if org {
		var result struct {
			Organization *struct {
				ProjectV2 *ProjectRef `json:"projectV2"`
			} `json:"organization"`
		}
		if err := client.Do(ctx, queryOrgProject, variables, &result); err != nil {
			return nil, err
		}
		if result.Organization == nil || result.Organization.ProjectV2 == nil {
			return nil, fmt.Errorf("project %d of org %s: %w", number, owner, github.ErrNotFound)
		}
		return result.Organization.ProjectV2, nil
	}

	var result struct {
		User *struct {
			ProjectV2 *ProjectRef `json:"projectV2"`
		} `json:"user"`
	}
	if err := client.Do(ctx, queryUserProject, variables, &result); err != nil {
		return nil, err
	}
	if result.User == nil || result.User.ProjectV2 == nil {
		return nil, fmt.Errorf("project %d of user %s: %w", number, owner, github.ErrNotFound)
	}
	return result.User.ProjectV2, nil
}
