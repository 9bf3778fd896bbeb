package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors returned by the API wrappers. Callers match with errors.Is.
var (
	// ErrNotFound indicates the requested project, item, or run does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates a caller-supplied value or combination was
	// rejected before any request was made.
	ErrInvalidArgument = errors.New("invalid argument")
)

// RemoteError is an error response from the GitHub API: a non-2xx status, or a
// GraphQL errors array on an otherwise successful response.
type RemoteError struct {
	Status   int
	Body     string
	Messages []string
	Types    []string // GraphQL error types, e.g. NOT_FOUND
}

func (e *RemoteError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("github: %s", strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("github: HTTP %d: %s", e.Status, e.Body)
}

// NotFound reports whether the remote signaled a missing resource, either as
// an HTTP 404 or a GraphQL NOT_FOUND error type.
func (e *RemoteError) NotFound() bool {
	if e.Status == http.StatusNotFound {
		return true
	}
	for _, t := range e.Types {
		if t == "NOT_FOUND" {
			return true
		}
	}
	return false
}

// Unwrap maps remote not-found signals onto ErrNotFound so callers can use
// errors.Is without inspecting statuses.
func (e *RemoteError) Unwrap() error {
	if e.NotFound() {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err is a missing-resource error from any layer.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
