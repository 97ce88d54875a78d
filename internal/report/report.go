package report

import (
	"time"

	"vidbatch/internal/services"
)

// Status is the outcome of one video in a batch.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Operation names a batch kind.
type Operation string

const (
	OperationBurn Operation = "burn"
	OperationGrab Operation = "grab"
)

// Item records what happened to one video.
type Item struct {
	Video     string        `json:"video"`
	Subtitle  string        `json:"subtitle,omitempty"`
	Output    string        `json:"output,omitempty"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Frames    int           `json:"frames,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// Report aggregates the per-video results of a batch in processing order.
type Report struct {
	Operation Operation `json:"operation"`
	Items     []Item    `json:"items"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
}

// New returns an empty report for op.
func New(op Operation) Report {
	return Report{Operation: op, Items: []Item{}}
}

// Add appends item and updates the counters.
func (r *Report) Add(item Item) {
	r.Items = append(r.Items, item)
	switch item.Status {
	case StatusSucceeded:
		r.Succeeded++
	case StatusFailed:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	}
}

// Failure builds a failed item from err.
func Failure(video string, err error, elapsed time.Duration) Item {
	item := Item{Video: video, Status: StatusFailed, Duration: elapsed}
	if err != nil {
		item.Error = err.Error()
		item.ErrorKind = services.Kind(err)
	}
	return item
}

// Total returns the number of videos the batch considered.
func (r Report) Total() int {
	return len(r.Items)
}
