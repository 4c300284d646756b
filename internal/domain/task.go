package domain

import (
	"time"
)

// TaskKey identifies one downloadable unit as "<coarse>-<fine>".
type TaskKey string

// Task is a single (coarse, fine) pair scheduled for download.
type Task struct {
	Coarse string `json:"coarse"`
	Fine   string `json:"fine"`
}

// Key returns the progress-tracking key of the task.
func (t Task) Key() TaskKey {
	return TaskKey(t.Coarse + "-" + t.Fine)
}

func (t Task) String() string {
	return string(t.Key())
}

// TaskOutcome is the persisted state of a task.
type TaskOutcome string

const (
	OutcomeCompleted TaskOutcome = "completed"
	OutcomeFailed    TaskOutcome = "failed"
)

// FetchStatus is the result of a single fetch execution.
type FetchStatus string

const (
	FetchSkipped FetchStatus = "skipped"
	FetchSuccess FetchStatus = "success"
	FetchFailed  FetchStatus = "failed"
)

// Outcome is emitted by a worker once a task finishes.
// Mark is the value to record for the task, empty when the record stays as is.
// Existing is set when a skip was caused by a file already at the destination
// rather than by the progress record.
type Outcome struct {
	Task     Task
	Status   FetchStatus
	Mark     TaskOutcome
	Existing bool
	Path     string
	Bytes    int64
	Duration time.Duration
	Err      error
}

// Discovery is the result of scanning the listing page of one coarse identifier.
// Err is set when the listing could not be fetched or parsed; Fines is empty then.
type Discovery struct {
	Coarse string
	Fines  []string
	Err    error
}

// Failed reports whether the scan failed rather than found zero versions.
func (d Discovery) Failed() bool {
	return d.Err != nil
}
