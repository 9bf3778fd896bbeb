// Package ghtest runs an in-process fake of the GitHub API surface the
// clients touch: the Projects v2 GraphQL queries and the Actions and issue
// REST endpoints. Tests seed a board and workflows, point a client at the
// server, and assert on the recorded calls.
package ghtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ai-janitor/ghproj/internal/github"
)

// pageSize mirrors the client's items page size.
const pageSize = 100

// Option is one choice of the fake board's Status field.
type Option struct {
	ID   string
	Name string
}

// ItemComment is one comment on a fake item's issue.
type ItemComment struct {
	Author    string
	Body      string
	CreatedAt string
}

// Extra is a non-Status field value carried by a fake item. Kind selects
// which payload the server renders: "text", "number", or "date".
type Extra struct {
	Field  string
	Kind   string
	Text   string
	Number float64
	Date   string
}

// Item is one fake board item.
type Item struct {
	ID         string
	DatabaseID int64
	Number     int
	Title      string
	Body       string
	URL        string
	State      string
	Author     string
	Assignees  []string
	Labels     []string
	Status     string
	Type       string // defaults to ISSUE
	Comments   []ItemComment
	Extras     []Extra
}

// Workflow is a fake Actions workflow.
type Workflow struct {
	ID           int64
	Name         string
	Path         string
	State        string
	Dispatchable bool
}

// Run is a fake workflow run. Seed newest first; the API serves them in
// slice order.
type Run struct {
	ID         int64
	WorkflowID int64
	Name       string
	Status     string
	Conclusion string
	Branch     string
	SHA        string
	LogsGone   bool
}

// BoardRef is a project resolvable by owner login and number.
type BoardRef struct {
	ID    string
	Title string
}

// Dispatch records one workflow_dispatch call.
type Dispatch struct {
	Workflow string
	Ref      string
	Inputs   map[string]string
}

// CommentPost records one issue comment call.
type CommentPost struct {
	Owner  string
	Repo   string
	Number int
	Body   string
}

// MoveRecord records one status mutation.
type MoveRecord struct {
	ItemID   string
	OptionID string
}

// Server is the fake API. Seed the exported fields before issuing requests;
// recorded calls are read through the accessors.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	ProjectID     string
	StatusFieldID string
	StatusOptions []Option
	NoStatusField bool
	Items         []Item

	Workflows []Workflow
	Runs      []Run

	// Boards resolvable via user(login:) and organization(login:) lookups,
	// keyed "login/number".
	UserBoards map[string]BoardRef
	OrgBoards  map[string]BoardRef

	// Failure knobs.
	FailMoves     map[string]string // item ID -> GraphQL error message
	FailItemsPage int               // 1-based page number to fail with a 500
	FailComments  map[int]string    // issue number -> error message

	graphqlCalls int
	itemPages    int
	moves        []MoveRecord
	dispatches   []Dispatch
	comments     []CommentPost
}

// New starts a fake server with an empty three-column board and shuts it
// down with the test.
func New(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		ProjectID:     "PVT_test",
		StatusFieldID: "FIELD_status",
		StatusOptions: []Option{
			{ID: "OPT_todo", Name: "Todo"},
			{ID: "OPT_progress", Name: "In Progress"},
			{ID: "OPT_done", Name: "Done"},
		},
		UserBoards:   map[string]BoardRef{},
		OrgBoards:    map[string]BoardRef{},
		FailMoves:    map[string]string{},
		FailComments: map[int]string{},
	}

	r := chi.NewRouter()
	r.Post("/graphql", s.handleGraphQL)
	r.Route("/repos/{owner}/{repo}", func(r chi.Router) {
		r.Get("/actions/workflows", s.handleListWorkflows)
		r.Post("/actions/workflows/{workflow}/dispatches", s.handleDispatch)
		r.Get("/actions/workflows/{workflow}/runs", s.handleWorkflowRuns)
		r.Get("/actions/runs/{id}", s.handleRun)
		r.Get("/actions/runs/{id}/logs", s.handleRunLogs)
		r.Post("/issues/{number}/comments", s.handleComment)
	})
	r.Get("/log-archive/{id}", s.handleLogArchive)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Client returns a github.Client pointed at this server.
func (s *Server) Client() *github.Client {
	return github.New("test-token", github.WithBaseURLs(s.URL+"/graphql", s.URL))
}

// SeedItems fills the board with n generated open issues cycling through
// the status options.
func (s *Server) SeedItems(n int) {
	for i := 1; i <= n; i++ {
		s.Items = append(s.Items, Item{
			ID:     fmt.Sprintf("PVTI_%03d", i),
			Number: i,
			Title:  fmt.Sprintf("Task %d", i),
			URL:    fmt.Sprintf("https://github.com/acme/widget/issues/%d", i),
			State:  "OPEN",
			Status: s.StatusOptions[i%len(s.StatusOptions)].Name,
		})
	}
}

// GraphQLCalls returns how many GraphQL requests were served.
func (s *Server) GraphQLCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graphqlCalls
}

// ItemPages returns how many item page requests were served.
func (s *Server) ItemPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemPages
}

// Moves returns the recorded status mutations in order.
func (s *Server) Moves() []MoveRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MoveRecord(nil), s.moves...)
}

// Dispatches returns the recorded workflow_dispatch calls in order.
func (s *Server) Dispatches() []Dispatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Dispatch(nil), s.dispatches...)
}

// Comments returns the recorded issue comments in order.
func (s *Server) Comments() []CommentPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CommentPost(nil), s.comments...)
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query     string                 `json:"query"`
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphqlCalls++

	switch {
	case strings.Contains(req.Query, "updateProjectV2ItemFieldValue"):
		s.moveItem(w, req.Variables)
	case strings.Contains(req.Query, "comments(first:"):
		s.itemDetail(w, req.Variables)
	case strings.Contains(req.Query, "items(first:"):
		s.itemsPageResponse(w, req.Variables)
	case strings.Contains(req.Query, "fields(first:"):
		s.projectFields(w, req.Variables)
	case strings.Contains(req.Query, "user(login:"):
		s.boardRef(w, req.Variables, s.UserBoards, "user")
	case strings.Contains(req.Query, "organization(login:"):
		s.boardRef(w, req.Variables, s.OrgBoards, "organization")
	default:
		writeGraphQLErrors(w, "unsupported query")
	}
}

func (s *Server) projectFields(w http.ResponseWriter, vars map[string]interface{}) {
	if vars["projectId"] != s.ProjectID {
		writeGraphQLData(w, map[string]interface{}{"node": nil})
		return
	}

	nodes := []interface{}{
		map[string]interface{}{"id": "FIELD_title", "name": "Title", "dataType": "TITLE"},
	}
	if !s.NoStatusField {
		opts := make([]map[string]string, len(s.StatusOptions))
		for i, o := range s.StatusOptions {
			opts[i] = map[string]string{"id": o.ID, "name": o.Name}
		}
		nodes = append(nodes, map[string]interface{}{
			"id":       s.StatusFieldID,
			"name":     "Status",
			"dataType": "SINGLE_SELECT",
			"options":  opts,
		})
	}
	// Field types outside the client's fragments come back as empty objects.
	nodes = append(nodes, map[string]interface{}{})

	writeGraphQLData(w, map[string]interface{}{
		"node": map[string]interface{}{
			"fields": map[string]interface{}{"nodes": nodes},
		},
	})
}

func (s *Server) itemsPageResponse(w http.ResponseWriter, vars map[string]interface{}) {
	s.itemPages++
	if s.FailItemsPage > 0 && s.itemPages == s.FailItemsPage {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
		return
	}
	if vars["projectId"] != s.ProjectID {
		writeGraphQLData(w, map[string]interface{}{"node": nil})
		return
	}

	start := 0
	if cursor, ok := vars["cursor"].(string); ok && cursor != "" {
		start, _ = strconv.Atoi(cursor)
	}
	end := start + pageSize
	if end > len(s.Items) {
		end = len(s.Items)
	}

	nodes := make([]interface{}, 0, end-start)
	for _, item := range s.Items[start:end] {
		nodes = append(nodes, s.itemJSON(item, false))
	}

	writeGraphQLData(w, map[string]interface{}{
		"node": map[string]interface{}{
			"items": map[string]interface{}{
				"pageInfo": map[string]interface{}{
					"hasNextPage": end < len(s.Items),
					"endCursor":   strconv.Itoa(end),
				},
				"nodes": nodes,
			},
		},
	})
}

func (s *Server) itemDetail(w http.ResponseWriter, vars map[string]interface{}) {
	id, _ := vars["itemId"].(string)
	for _, item := range s.Items {
		if item.ID == id {
			writeGraphQLData(w, map[string]interface{}{"node": s.itemJSON(item, true)})
			return
		}
	}
	writeGraphQLData(w, map[string]interface{}{"node": nil})
}

func (s *Server) moveItem(w http.ResponseWriter, vars map[string]interface{}) {
	itemID, _ := vars["itemId"].(string)
	optionID, _ := vars["optionId"].(string)

	if msg, ok := s.FailMoves[itemID]; ok {
		writeGraphQLErrors(w, msg)
		return
	}

	found := false
	for i := range s.Items {
		if s.Items[i].ID != itemID {
			continue
		}
		found = true
		for _, opt := range s.StatusOptions {
			if opt.ID == optionID {
				s.Items[i].Status = opt.Name
			}
		}
	}
	if !found {
		writeGraphQLErrors(w, fmt.Sprintf("Could not resolve to a node with the global id of '%s'", itemID))
		return
	}

	s.moves = append(s.moves, MoveRecord{ItemID: itemID, OptionID: optionID})
	writeGraphQLData(w, map[string]interface{}{
		"updateProjectV2ItemFieldValue": map[string]interface{}{
			"projectV2Item": map[string]interface{}{"id": itemID},
		},
	})
}

func (s *Server) boardRef(w http.ResponseWriter, vars map[string]interface{}, boards map[string]BoardRef, root string) {
	login, _ := vars["login"].(string)
	number, _ := vars["number"].(float64)

	var project interface{}
	if ref, ok := boards[fmt.Sprintf("%s/%d", login, int(number))]; ok {
		project = map[string]interface{}{
			"id":     ref.ID,
			"title":  ref.Title,
			"number": int(number),
			"url":    fmt.Sprintf("https://github.com/%s/projects/%d", login, int(number)),
		}
	}
	writeGraphQLData(w, map[string]interface{}{
		root: map[string]interface{}{"projectV2": project},
	})
}

func (s *Server) itemJSON(item Item, withComments bool) map[string]interface{} {
	typ := item.Type
	if typ == "" {
		typ = "ISSUE"
	}

	var content map[string]interface{}
	if typ == "DRAFT_ISSUE" {
		content = map[string]interface{}{
			"title": item.Title,
			"body":  item.Body,
		}
	} else {
		assignees := make([]map[string]string, len(item.Assignees))
		for i, a := range item.Assignees {
			assignees[i] = map[string]string{"login": a}
		}
		labels := make([]map[string]string, len(item.Labels))
		for i, l := range item.Labels {
			labels[i] = map[string]string{"name": l}
		}
		content = map[string]interface{}{
			"number":    item.Number,
			"title":     item.Title,
			"body":      item.Body,
			"url":       item.URL,
			"state":     item.State,
			"assignees": map[string]interface{}{"nodes": assignees},
			"labels":    map[string]interface{}{"nodes": labels},
		}
		if item.Author != "" {
			content["author"] = map[string]string{"login": item.Author}
		}
		if withComments {
			comments := make([]map[string]interface{}, len(item.Comments))
			for i, c := range item.Comments {
				comments[i] = map[string]interface{}{
					"author":    map[string]string{"login": c.Author},
					"body":      c.Body,
					"createdAt": c.CreatedAt,
				}
			}
			content["comments"] = map[string]interface{}{"nodes": comments}
		}
	}

	// The leading empty object mimics a field value outside the client's
	// fragments.
	fieldValues := []interface{}{
		map[string]interface{}{},
	}
	if item.Status != "" {
		fieldValues = append(fieldValues, map[string]interface{}{
			"name":  item.Status,
			"field": map[string]string{"name": "Status"},
		})
	}
	for _, extra := range item.Extras {
		node := map[string]interface{}{"field": map[string]string{"name": extra.Field}}
		switch extra.Kind {
		case "number":
			node["number"] = extra.Number
		case "date":
			node["date"] = extra.Date
		default:
			node["text"] = extra.Text
		}
		fieldValues = append(fieldValues, node)
	}

	return map[string]interface{}{
		"id":          item.ID,
		"databaseId":  item.DatabaseID,
		"type":        typ,
		"content":     content,
		"fieldValues": map[string]interface{}{"nodes": fieldValues},
	}
}

func (s *Server) findWorkflow(ref string) *Workflow {
	for i := range s.Workflows {
		wf := &s.Workflows[i]
		if strconv.FormatInt(wf.ID, 10) == ref || path.Base(wf.Path) == ref {
			return wf
		}
	}
	return nil
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	workflows := make([]map[string]interface{}, len(s.Workflows))
	for i, wf := range s.Workflows {
		workflows[i] = map[string]interface{}{
			"id":    wf.ID,
			"name":  wf.Name,
			"path":  wf.Path,
			"state": wf.State,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_count": len(workflows),
		"workflows":   workflows,
	})
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Ref    string            `json:"ref"`
		Inputs map[string]string `json:"inputs"`
	}
	json.NewDecoder(r.Body).Decode(&payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := chi.URLParam(r, "workflow")
	wf := s.findWorkflow(ref)
	if wf == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	if !wf.Dispatchable {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"message": "Workflow does not have 'workflow_dispatch' trigger",
		})
		return
	}

	s.dispatches = append(s.dispatches, Dispatch{Workflow: ref, Ref: payload.Ref, Inputs: payload.Inputs})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWorkflowRuns(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf := s.findWorkflow(chi.URLParam(r, "workflow"))
	if wf == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}

	branch := r.URL.Query().Get("branch")
	limit := 0
	if v := r.URL.Query().Get("per_page"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	runs := make([]map[string]interface{}, 0)
	for _, run := range s.Runs {
		if run.WorkflowID != wf.ID {
			continue
		}
		if branch != "" && run.Branch != branch {
			continue
		}
		runs = append(runs, runJSON(run))
		if limit > 0 && len(runs) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_count":   len(runs),
		"workflow_runs": runs,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	for _, run := range s.Runs {
		if run.ID == id {
			writeJSON(w, http.StatusOK, runJSON(run))
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func (s *Server) handleRunLogs(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

	s.mu.Lock()
	var found *Run
	for i := range s.Runs {
		if s.Runs[i].ID == id {
			found = &s.Runs[i]
		}
	}
	s.mu.Unlock()

	if found == nil || found.LogsGone {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/log-archive/%d", id), http.StatusFound)
}

func (s *Server) handleLogArchive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/zip")
	fmt.Fprintf(w, "PK\x03\x04 logs for run %s", chi.URLParam(r, "id"))
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Body string `json:"body"`
	}
	json.NewDecoder(r.Body).Decode(&payload)

	number, _ := strconv.Atoi(chi.URLParam(r, "number"))

	s.mu.Lock()
	defer s.mu.Unlock()

	if msg, ok := s.FailComments[number]; ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": msg})
		return
	}

	s.comments = append(s.comments, CommentPost{
		Owner:  chi.URLParam(r, "owner"),
		Repo:   chi.URLParam(r, "repo"),
		Number: number,
		Body:   payload.Body,
	})
	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": len(s.comments)})
}

func runJSON(run Run) map[string]interface{} {
	return map[string]interface{}{
		"id":          run.ID,
		"name":        run.Name,
		"status":      run.Status,
		"conclusion":  run.Conclusion,
		"head_branch": run.Branch,
		"head_sha":    run.SHA,
	}
}

func writeGraphQLData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

func writeGraphQLErrors(w http.ResponseWriter, msgs ...string) {
	errs := make([]map[string]string, len(msgs))
	for i, m := range msgs {
		errs[i] = map[string]string{"message": m}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": nil, "errors": errs})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
