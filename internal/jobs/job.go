// Package jobs runs categorization batches on a background worker so the
// foreground goroutine stays free to cancel them.
package jobs

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// JobType identifies the kind of work a job performs.
type JobType string

const (
	JobTypeCategorize JobType = "categorize"
	JobTypePrune      JobType = "prune"
	JobTypeExport     JobType = "export"
)

// Job is a snapshot of a background task.
type Job struct {
	ID          string     `json:"id"`
	Type        JobType    `json:"type"`
	Scope       string     `json:"scope,omitempty"` // directory the job works on
	Status      JobStatus  `json:"status"`
	Processed   int        `json:"processed"`
	Total       int        `json:"total"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// NewJob creates a queued job with a fresh ID.
func NewJob(jobType JobType, scope string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Scope:     scope,
		Status:    JobQueued,
		CreatedAt: time.Now().UTC(),
	}
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed || j.Status == JobCancelled
}

// CanCancel returns true if the job can be cancelled.
func (j *Job) CanCancel() bool {
	return j.Status == JobQueued || j.Status == JobRunning
}

// MarkStarted transitions the job to running state.
func (j *Job) MarkStarted() {
	now := time.Now().UTC()
	j.Status = JobRunning
	j.StartedAt = &now
}

// MarkCompleted transitions the job to completed state.
func (j *Job) MarkCompleted() {
	now := time.Now().UTC()
	j.Status = JobCompleted
	j.CompletedAt = &now
}

// MarkFailed transitions the job to failed state with error.
func (j *Job) MarkFailed(err error) {
	now := time.Now().UTC()
	j.Status = JobFailed
	j.CompletedAt = &now
	if err != nil {
		j.Error = err.Error()
	}
}

// MarkCancelled transitions the job to cancelled state.
func (j *Job) MarkCancelled() {
	now := time.Now().UTC()
	j.Status = JobCancelled
	j.CompletedAt = &now
}

// SetProgress records how many of total items are done. Out-of-range
// values are clamped.
func (j *Job) SetProgress(processed, total int) {
	if total < 0 {
		total = 0
	}
	if processed < 0 {
		processed = 0
	}
	if total > 0 && processed > total {
		processed = total
	}
	j.Processed, j.Total = processed, total
}

// Percent returns progress as 0-100; 0 when the total is unknown.
func (j *Job) Percent() int {
	if j.Total == 0 {
		if j.Status == JobCompleted {
			return 100
		}
		return 0
	}
	return j.Processed * 100 / j.Total
}

// Duration returns how long the job took (or has been running).
func (j *Job) Duration() time.Duration {
	if j.StartedAt == nil {
		return 0
	}
	endTime := time.Now().UTC()
	if j.CompletedAt != nil {
		endTime = *j.CompletedAt
	}
	return endTime.Sub(*j.StartedAt)
}

// ListJobsOptions contains options for listing jobs.
type ListJobsOptions struct {
	Status []JobStatus
	Type   []JobType
	Limit  int
}

func (o ListJobsOptions) match(j *Job) bool {
	if len(o.Status) > 0 && !contains(o.Status, j.Status) {
		return false
	}
	if len(o.Type) > 0 && !contains(o.Type, j.Type) {
		return false
	}
	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
