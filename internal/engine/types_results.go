package engine

import (
	"time"

	"github.com/danieljhkim/devbackup/internal/config"
	"github.com/danieljhkim/devbackup/internal/planner"
)

// ItemStatus is the outcome of one copy step.
type ItemStatus string

const (
	// StatusCopied means the item was written to its destination.
	StatusCopied ItemStatus = "copied"

	// StatusAbsent means an optional item was not present at the source.
	StatusAbsent ItemStatus = "absent"

	// StatusFailed means the copy failed; Err holds the cause.
	StatusFailed ItemStatus = "failed"
)

// ItemKind describes what an item copies.
type ItemKind string

const (
	KindFile ItemKind = "file"
	KindTree ItemKind = "tree"
)

// ItemResult is the outcome of one per-item copy step.
type ItemResult struct {
	// Source is the path copied from
	Source string `json:"source"`

	// Destination is the path copied to
	Destination string `json:"destination"`

	Kind   ItemKind   `json:"kind,omitempty"`
	Status ItemStatus `json:"status"`

	// Err is the failure cause when Status is StatusFailed
	Err error `json:"-"`
}

// Failed reports whether the item failed.
func (r ItemResult) Failed() bool {
	return r.Status == StatusFailed
}

// CategoryReport aggregates the item outcomes for one category.
type CategoryReport struct {
	Category    config.Category `json:"category"`
	Destination string          `json:"destination"`
	Items       []ItemResult    `json:"items"`
}

// Failures returns the failed items in order.
func (r CategoryReport) Failures() []ItemResult {
	var failed []ItemResult
	for _, item := range r.Items {
		if item.Failed() {
			failed = append(failed, item)
		}
	}
	return failed
}

// Copied returns the number of items written.
func (r CategoryReport) Copied() int {
	n := 0
	for _, item := range r.Items {
		if item.Status == StatusCopied {
			n++
		}
	}
	return n
}

// RunResult represents the result of one backup run.
type RunResult struct {
	// Plan is the plan the run executed
	Plan *planner.Plan `json:"plan"`

	// Reports holds one report per populated category, in populate order
	Reports []CategoryReport `json:"reports"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// FailureCount returns the number of failed items across all categories.
func (r *RunResult) FailureCount() int {
	n := 0
	for _, rep := range r.Reports {
		n += len(rep.Failures())
	}
	return n
}
