package api

import (
	"vidbatch/internal/deps"
	"vidbatch/internal/history"
	"vidbatch/internal/report"
)

// Response status values.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// RunResponse is the body returned by POST /run.
type RunResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	RunID   string          `json:"run_id,omitempty"`
	Reports []report.Report `json:"reports"`
}

// StatusResponse describes the service and its external dependencies.
type StatusResponse struct {
	Version      string        `json:"version,omitempty"`
	Ready        bool          `json:"ready"`
	HistoryPath  string        `json:"history_path,omitempty"`
	Dependencies []deps.Status `json:"dependencies"`
}

// RunListResponse wraps recorded runs, newest first.
type RunListResponse struct {
	Runs []history.Run `json:"runs"`
}

// ErrorResponse is returned for non-run errors.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
