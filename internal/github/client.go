// Package github provides the shared transport for the GitHub GraphQL and
// REST APIs. Higher-level packages build board and workflow clients on top of
// it; this package only moves requests and classifies failures.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// GraphQLURL is the GitHub GraphQL API endpoint.
	GraphQLURL = "https://api.github.com/graphql"

	// RESTURL is the GitHub REST API base URL.
	RESTURL = "https://api.github.com"

	userAgent = "ghproj"
)

// Client is an authenticated GitHub API client covering both the GraphQL and
// REST endpoints. Requests are bounded by the HTTP client's 30 second timeout
// unless a custom client is supplied. The client never retries.
type Client struct {
	token      string
	httpClient *http.Client
	graphqlURL string
	restURL    string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURLs overrides the GraphQL and REST endpoints. Tests use this to
// point the client at a local server.
func WithBaseURLs(graphql, rest string) Option {
	return func(c *Client) {
		c.graphqlURL = graphql
		c.restURL = rest
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a GitHub API client authenticated with the given token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		graphqlURL: GraphQLURL,
		restURL:    RESTURL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GraphQLRequest represents a GraphQL request body.
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// GraphQLResponse represents a GraphQL response envelope.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError represents a single error in a GraphQL response.
type GraphQLError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// Do executes a GraphQL query and unmarshals the data field into result.
// A non-200 status, or an errors array even on HTTP 200, returns a
// *RemoteError.
func (c *Client) Do(ctx context.Context, query string, variables map[string]interface{}, result interface{}) error {
	body, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("User-Agent", userAgent)

	reqID := uuid.New().String()[:8]
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("graphql request",
		"request_id", reqID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var gqlResp GraphQLResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	// The API reports query failures in the errors array with HTTP 200.
	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		types := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
			types[i] = e.Type
		}
		return &RemoteError{Status: resp.StatusCode, Messages: msgs, Types: types}
	}

	if result != nil {
		if err := json.Unmarshal(gqlResp.Data, result); err != nil {
			return fmt.Errorf("unmarshal data: %w", err)
		}
	}

	return nil
}

// REST executes a JSON request against the REST API and unmarshals a 2xx
// response body into result. path must start with a slash. A nil result
// discards the body. Non-2xx statuses return a *RemoteError.
func (c *Client) REST(ctx context.Context, method, path string, body, result interface{}) error {
	status, respBody, err := c.rest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return &RemoteError{Status: status, Body: string(respBody)}
	}
	if result != nil && status != http.StatusNoContent && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

// RESTStatus executes a REST request and returns the status code and raw body
// without mapping non-2xx statuses to errors. Used where the status itself is
// the signal, like workflow dispatches.
func (c *Client) RESTStatus(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	return c.rest(ctx, method, path, body)
}

// Raw fetches path and returns the raw response bytes, following any
// redirects. Non-2xx statuses return a *RemoteError.
func (c *Client) Raw(ctx context.Context, path string) ([]byte, error) {
	status, body, err := c.rest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &RemoteError{Status: status, Body: string(body)}
	}
	return body, nil
}

func (c *Client) rest(ctx context.Context, method, path string, body interface{}) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.restURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/vnd.github+json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("User-Agent", userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	reqID := uuid.New().String()[:8]
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("rest request",
		"request_id", reqID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp.StatusCode, respBody, nil
}
