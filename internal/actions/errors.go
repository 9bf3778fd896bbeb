package actions

import "errors"

var (
	// ErrWorkflowNotFound marks a workflow file or ID the repository does
	// not have.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrNotDispatchable marks a workflow without a workflow_dispatch
	// trigger.
	ErrNotDispatchable = errors.New("workflow cannot be dispatched")

	// ErrInsufficientRuns marks a request for the nth recent run of a
	// workflow that has fewer than n.
	ErrInsufficientRuns = errors.New("not enough workflow runs")

	// ErrLogsUnavailable marks logs that have expired or were never
	// produced.
	ErrLogsUnavailable = errors.New("run logs unavailable")
)
