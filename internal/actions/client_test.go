package actions

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ai-janitor/ghproj/internal/ghtest"
	"github.com/ai-janitor/ghproj/internal/github"
)

func newTestClient(t *testing.T) (*Client, *ghtest.Server) {
	t.Helper()
	srv := ghtest.New(t)
	srv.Workflows = []ghtest.Workflow{
		{ID: 101, Name: "CI", Path: ".github/workflows/ci.yml", State: "active", Dispatchable: true},
		{ID: 102, Name: "Release", Path: ".github/workflows/release.yml", State: "active"},
	}
	srv.Runs = []ghtest.Run{
		{ID: 9003, WorkflowID: 101, Name: "CI", Status: "completed", Conclusion: "success", Branch: "main", SHA: "c3"},
		{ID: 9002, WorkflowID: 101, Name: "CI", Status: "completed", Conclusion: "failure", Branch: "feature", SHA: "c2"},
		{ID: 9001, WorkflowID: 101, Name: "CI", Status: "completed", Conclusion: "success", Branch: "main", SHA: "c1"},
	}
	return NewClient(srv.Client(), "acme", "widget"), srv
}

func TestList(t *testing.T) {
	c, _ := newTestClient(t)

	workflows, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(workflows) != 2 {
		t.Fatalf("got %d workflows, want 2", len(workflows))
	}
	if workflows[0].Name != "CI" || workflows[0].FileName() != "ci.yml" {
		t.Errorf("first workflow = %+v", workflows[0])
	}
}

func TestTrigger(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	if err := c.Trigger(ctx, "ci.yml", "", nil); err != nil {
		t.Fatalf("trigger by file name: %v", err)
	}
	if err := c.Trigger(ctx, "101", "develop", map[string]string{"verbose": "true"}); err != nil {
		t.Fatalf("trigger by ID: %v", err)
	}

	dispatches := srv.Dispatches()
	if len(dispatches) != 2 {
		t.Fatalf("recorded %d dispatches, want 2", len(dispatches))
	}
	if dispatches[0].Workflow != "ci.yml" || dispatches[0].Ref != "main" {
		t.Errorf("first dispatch = %+v, want ref defaulted to main", dispatches[0])
	}
	if dispatches[1].Ref != "develop" || dispatches[1].Inputs["verbose"] != "true" {
		t.Errorf("second dispatch = %+v", dispatches[1])
	}
}

func TestTriggerErrors(t *testing.T) {
	c, srv := newTestClient(t)
	ctx := context.Background()

	if err := c.Trigger(ctx, "", "", nil); !errors.Is(err, github.ErrInvalidArgument) {
		t.Errorf("empty workflow error = %v, want invalid argument", err)
	}
	if err := c.Trigger(ctx, "nope.yml", "", nil); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("unknown workflow error = %v, want %v", err, ErrWorkflowNotFound)
	}

	err := c.Trigger(ctx, "release.yml", "", nil)
	if !errors.Is(err, ErrNotDispatchable) {
		t.Fatalf("error = %v, want %v", err, ErrNotDispatchable)
	}
	if !strings.Contains(err.Error(), "workflow_dispatch") {
		t.Errorf("error does not carry the API message: %v", err)
	}
	if len(srv.Dispatches()) != 0 {
		t.Error("failed triggers recorded a dispatch")
	}
}

func TestRuns(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	all, err := c.Runs(ctx, "ci.yml", "", 0)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(all) != 3 || all[0].ID != 9003 {
		t.Errorf("all runs = %+v", all)
	}
	if all[1].Branch != "feature" || all[1].Conclusion != "failure" {
		t.Errorf("second run not mapped: %+v", all[1])
	}

	main, err := c.Runs(ctx, "ci.yml", "main", 0)
	if err != nil {
		t.Fatalf("Runs on main: %v", err)
	}
	if len(main) != 2 || main[0].ID != 9003 || main[1].ID != 9001 {
		t.Errorf("main runs = %+v", main)
	}

	latest, err := c.Runs(ctx, "ci.yml", "", 1)
	if err != nil {
		t.Fatalf("Runs limit 1: %v", err)
	}
	if len(latest) != 1 || latest[0].ID != 9003 {
		t.Errorf("limited runs = %+v", latest)
	}

	if _, err := c.Runs(ctx, "nope.yml", "", 0); !errors.Is(err, ErrWorkflowNotFound) {
		t.Errorf("unknown workflow error = %v", err)
	}
}

func TestRun(t *testing.T) {
	c, _ := newTestClient(t)

	run, err := c.Run(context.Background(), 9002)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Branch != "feature" || run.SHA != "c2" {
		t.Errorf("run = %+v", run)
	}

	if _, err := c.Run(context.Background(), 7777); !github.IsNotFound(err) {
		t.Errorf("unknown run error = %v, want not found", err)
	}
}

func TestNthRun(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	latest, err := c.NthRun(ctx, "ci.yml", "", 1)
	if err != nil {
		t.Fatalf("NthRun 1: %v", err)
	}
	if latest.ID != 9003 {
		t.Errorf("latest = %+v", latest)
	}

	second, err := c.NthRun(ctx, "ci.yml", "main", 2)
	if err != nil {
		t.Fatalf("NthRun 2 on main: %v", err)
	}
	if second.ID != 9001 {
		t.Errorf("second main run = %+v", second)
	}

	if _, err := c.NthRun(ctx, "ci.yml", "", 0); !errors.Is(err, github.ErrInvalidArgument) {
		t.Errorf("nth 0 error = %v, want invalid argument", err)
	}

	_, err = c.NthRun(ctx, "ci.yml", "main", 3)
	if !errors.Is(err, ErrInsufficientRuns) {
		t.Fatalf("error = %v, want %v", err, ErrInsufficientRuns)
	}
	if !strings.Contains(err.Error(), "only 2 available") {
		t.Errorf("error does not say how many exist: %v", err)
	}
}

func TestLogs(t *testing.T) {
	c, srv := newTestClient(t)
	srv.Runs = append(srv.Runs, ghtest.Run{ID: 9009, WorkflowID: 101, Branch: "main", LogsGone: true})
	ctx := context.Background()

	data, err := c.Logs(ctx, 9003)
	if err != nil {
		t.Fatalf("Logs: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("logs are not a zip archive: %q", data)
	}

	if _, err := c.Logs(ctx, 9009); !errors.Is(err, ErrLogsUnavailable) {
		t.Errorf("expired logs error = %v, want %v", err, ErrLogsUnavailable)
	}
	if _, err := c.Logs(ctx, 7777); !errors.Is(err, ErrLogsUnavailable) {
		t.Errorf("unknown run error = %v, want %v", err, ErrLogsUnavailable)
	}
}

func TestResolve(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		sel     RunSelector
		wantID  int64
		wantErr error
	}{
		{name: "by run ID", sel: RunSelector{RunID: 9002}, wantID: 9002},
		{name: "latest of workflow", sel: RunSelector{Workflow: "ci.yml"}, wantID: 9003},
		{name: "nth on branch", sel: RunSelector{Workflow: "ci.yml", Branch: "main", Nth: 2}, wantID: 9001},
		{name: "both set", sel: RunSelector{RunID: 9002, Workflow: "ci.yml"}, wantErr: github.ErrInvalidArgument},
		{name: "neither set", sel: RunSelector{}, wantErr: github.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := c.Resolve(ctx, tt.sel)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if run.ID != tt.wantID {
				t.Errorf("run ID = %d, want %d", run.ID, tt.wantID)
			}
		})
	}
}

func TestLogsFor(t *testing.T) {
	c, _ := newTestClient(t)

	run, data, err := c.LogsFor(context.Background(), RunSelector{Workflow: "ci.yml"})
	if err != nil {
		t.Fatalf("LogsFor: %v", err)
	}
	if run.ID != 9003 {
		t.Errorf("resolved run = %+v", run)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("logs are not a zip archive: %q", data)
	}
}
