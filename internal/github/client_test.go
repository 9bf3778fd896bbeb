package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoSuccess(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		fmt.Fprint(w, `{"data": {"viewer": {"login": "octocat"}}}`)
	}))
	defer server.Close()

	client := New("test-token", WithBaseURLs(server.URL, server.URL))

	var result struct {
		Viewer struct {
			Login string `json:"login"`
		} `json:"viewer"`
	}
	if err := client.Do(context.Background(), `query { viewer { login } }`, nil, &result); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if result.Viewer.Login != "octocat" {
		t.Errorf("login = %q, want %q", result.Viewer.Login, "octocat")
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-token")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", gotContentType, "application/json")
	}
}

func TestDoHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream unavailable")
	}))
	defer server.Close()

	client := New("test-token", WithBaseURLs(server.URL, server.URL))

	err := client.Do(context.Background(), `query { viewer { login } }`, nil, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected *RemoteError, got %T: %v", err, err)
	}
	if remote.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", remote.Status, http.StatusBadGateway)
	}
}

func TestDoGraphQLErrors(t *testing.T) {
	// The API reports query failures with HTTP 200 and an errors array.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": null, "errors": [{"type": "NOT_FOUND", "message": "Could not resolve to a node"}]}`)
	}))
	defer server.Close()

	client := New("test-token", WithBaseURLs(server.URL, server.URL))

	err := client.Do(context.Background(), `query { node(id: "bogus") { id } }`, nil, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected *RemoteError, got %T: %v", err, err)
	}
	if remote.Status != http.StatusOK {
		t.Errorf("status = %d, want %d", remote.Status, http.StatusOK)
	}
	if len(remote.Messages) != 1 || remote.Messages[0] != "Could not resolve to a node" {
		t.Errorf("messages = %v, want the server message", remote.Messages)
	}
}

func TestREST(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantStatus int
	}{
		{
			name:   "ok with body",
			status: http.StatusOK,
			body:   `{"id": 42}`,
		},
		{
			name:   "created",
			status: http.StatusCreated,
			body:   `{"id": 7}`,
		},
		{
			name:   "no content",
			status: http.StatusNoContent,
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       `{"message": "Not Found"}`,
			wantErr:    true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       "boom",
			wantErr:    true,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
					t.Errorf("Accept = %q", got)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := New("test-token", WithBaseURLs(server.URL, server.URL))

			var result struct {
				ID int `json:"id"`
			}
			err := client.REST(context.Background(), http.MethodGet, "/repos/acme/widget", nil, &result)

			if tt.wantErr {
				var remote *RemoteError
				if !errors.As(err, &remote) {
					t.Fatalf("expected *RemoteError, got %T: %v", err, err)
				}
				if remote.Status != tt.wantStatus {
					t.Errorf("status = %d, want %d", remote.Status, tt.wantStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("REST failed: %v", err)
			}
		})
	}
}

func TestRESTStatusDoesNotMapErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message": "Workflow does not have workflow_dispatch trigger"}`)
	}))
	defer server.Close()

	client := New("test-token", WithBaseURLs(server.URL, server.URL))

	status, body, err := client.RESTStatus(context.Background(), http.MethodPost, "/dispatch", map[string]string{"ref": "main"})
	if err != nil {
		t.Fatalf("RESTStatus failed: %v", err)
	}
	if status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", status)
	}
	if len(body) == 0 {
		t.Error("expected body to be returned")
	}
}

func TestRawFollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/archive", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("zip-bytes"))
	})
	mux.HandleFunc("/logs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/archive", http.StatusFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := New("test-token", WithBaseURLs(server.URL, server.URL))

	data, err := client.Raw(context.Background(), "/logs")
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	if string(data) != "zip-bytes" {
		t.Errorf("data = %q, want %q", data, "zip-bytes")
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sentinel", ErrNotFound, true},
		{"wrapped sentinel", fmt.Errorf("item x: %w", ErrNotFound), true},
		{"remote 404", &RemoteError{Status: http.StatusNotFound}, true},
		{"graphql not found type", &RemoteError{Status: http.StatusOK, Types: []string{"NOT_FOUND"}}, true},
		{"remote 500", &RemoteError{Status: http.StatusInternalServerError}, false},
		{"other error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.want {
				t.Errorf("IsNotFound = %v, want %v", got, tt.want)
			}
		})
	}
}
