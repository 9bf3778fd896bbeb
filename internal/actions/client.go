// Package actions triggers and inspects GitHub Actions workflows for one
// repository.
package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"github.com/ai-janitor/ghproj/internal/github"
)

// Client works against one repository's Actions API.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewClient creates a Client for owner/repo.
func NewClient(gh *github.Client, owner, repo string) *Client {
	return &Client{gh: gh, owner: owner, repo: repo}
}

// Workflow is one workflow definition in the repository.
type Workflow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	State string `json:"state"`
}

// FileName returns the workflow file's base name, the form the dispatch
// endpoints accept alongside numeric IDs.
func (w Workflow) FileName() string {
	return path.Base(w.Path)
}

// WorkflowRun is one execution of a workflow.
type WorkflowRun struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	RunNumber  int       `json:"run_number"`
	Event      string    `json:"event"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	Branch     string    `json:"head_branch"`
	SHA        string    `json:"head_sha"`
	URL        string    `json:"html_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// List returns the repository's workflows.
func (c *Client) List(ctx context.Context) ([]Workflow, error) {
	var result struct {
		Workflows []Workflow `json:"workflows"`
	}
	p := fmt.Sprintf("/repos/%s/%s/actions/workflows", c.owner, c.repo)
	if err := c.gh.REST(ctx, http.MethodGet, p, nil, &result); err != nil {
		return nil, err
	}
	return result.Workflows, nil
}

// Trigger dispatches a workflow on ref, by file name or numeric ID. An
// empty ref dispatches on main.
func (c *Client) Trigger(ctx context.Context, workflow, ref string, inputs map[string]string) error {
	if workflow == "" {
		return fmt.Errorf("%w: empty workflow", github.ErrInvalidArgument)
	}
	if ref == "" {
		ref = "main"
	}

	payload := map[string]interface{}{"ref": ref}
	if len(inputs) > 0 {
		payload["inputs"] = inputs
	}

	p := fmt.Sprintf("/repos/%s/%s/actions/workflows/%s/dispatches", c.owner, c.repo, url.PathEscape(workflow))
	status, body, err := c.gh.RESTStatus(ctx, http.MethodPost, p, payload)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflow)
	case http.StatusUnprocessableEntity:
		if msg := errMessage(body); msg != "" {
			return fmt.Errorf("%w: %s", ErrNotDispatchable, msg)
		}
		return fmt.Errorf("%w: %s", ErrNotDispatchable, workflow)
	default:
		return &github.RemoteError{Status: status, Body: string(body)}
	}
}

// Runs returns a workflow's recent runs, newest first. branch narrows to
// one branch; limit caps the page size when positive.
func (c *Client) Runs(ctx context.Context, workflow, branch string, limit int) ([]WorkflowRun, error) {
	if workflow == "" {
		return nil, fmt.Errorf("%w: empty workflow", github.ErrInvalidArgument)
	}

	q := url.Values{}
	if branch != "" {
		q.Set("branch", branch)
	}
	if limit > 0 {
		q.Set("per_page", strconv.Itoa(limit))
	}
	p := fmt.Sprintf("/repos/%s/%s/actions/workflows/%s/runs", c.owner, c.repo, url.PathEscape(workflow))
	if enc := q.Encode(); enc != "" {
		p += "?" + enc
	}

	var result struct {
		Runs []WorkflowRun `json:"workflow_runs"`
	}
	if err := c.gh.REST(ctx, http.MethodGet, p, nil, &result); err != nil {
		if github.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowNotFound, workflow)
		}
		return nil, err
	}
	return result.Runs, nil
}

// Run fetches one run by its ID.
func (c *Client) Run(ctx context.Context, runID int64) (*WorkflowRun, error) {
	var run WorkflowRun
	p := fmt.Sprintf("/repos/%s/%s/actions/runs/%d", c.owner, c.repo, runID)
	if err := c.gh.REST(ctx, http.MethodGet, p, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// NthRun returns the nth most recent run of a workflow, 1 being the
// latest. branch narrows to runs of one branch.
func (c *Client) NthRun(ctx context.Context, workflow, branch string, nth int) (*WorkflowRun, error) {
	if nth < 1 {
		return nil, fmt.Errorf("%w: run index %d", github.ErrInvalidArgument, nth)
	}
	runs, err := c.Runs(ctx, workflow, branch, nth)
	if err != nil {
		return nil, err
	}
	if len(runs) < nth {
		return nil, fmt.Errorf("%w: wanted run %d of %q, only %d available",
			ErrInsufficientRuns, nth, workflow, len(runs))
	}
	return &runs[nth-1], nil
}

// Logs downloads a run's zipped log archive.
func (c *Client) Logs(ctx context.Context, runID int64) ([]byte, error) {
	p := fmt.Sprintf("/repos/%s/%s/actions/runs/%d/logs", c.owner, c.repo, runID)
	data, err := c.gh.Raw(ctx, p)
	if err != nil {
		var remote *github.RemoteError
		if errors.As(err, &remote) && remote.NotFound() {
			return nil, fmt.Errorf("%w: run %d", ErrLogsUnavailable, runID)
		}
		return nil, err
	}
	return data, nil
}

// RunSelector names one run, either directly by ID or as the nth recent
// run of a workflow. Exactly one of RunID and Workflow must be set; Nth
// defaults to the latest run.
type RunSelector struct {
	RunID    int64
	Workflow string
	Branch   string
	Nth      int
}

// Resolve turns a selector into a concrete run.
func (c *Client) Resolve(ctx context.Context, sel RunSelector) (*WorkflowRun, error) {
	switch {
	case sel.RunID != 0 && sel.Workflow != "":
		return nil, fmt.Errorf("%w: run ID and workflow are mutually exclusive", github.ErrInvalidArgument)
	case sel.RunID != 0:
		return c.Run(ctx, sel.RunID)
	case sel.Workflow != "":
		nth := sel.Nth
		if nth == 0 {
			nth = 1
		}
		return c.NthRun(ctx, sel.Workflow, sel.Branch, nth)
	}
	return nil, fmt.Errorf("%w: need a run ID or a workflow", github.ErrInvalidArgument)
}

// LogsFor resolves a selector and downloads that run's logs.
func (c *Client) LogsFor(ctx context.Context, sel RunSelector) (*WorkflowRun, []byte, error) {
	run, err := c.Resolve(ctx, sel)
	if err != nil {
		return nil, nil, err
	}
	data, err := c.Logs(ctx, run.ID)
	if err != nil {
		return run, nil, err
	}
	return run, data, nil
}

// errMessage pulls the message field out of a REST error body.
func errMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
