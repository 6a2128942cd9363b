package domain

import (
	"time"
)

// JobID is a unique identifier for a job.
type JobID string

// String returns the string representation of the JobID.
func (id JobID) String() string {
	return string(id)
}

// BatchID groups the jobs submitted together.
type BatchID string

// String returns the string representation of the BatchID.
func (id BatchID) String() string {
	return string(id)
}

// JobStatus represents the current state of a job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Runnable reports whether a worker may pick the job up.
func (s JobStatus) Runnable() bool {
	return s == JobStatusQueued || s == JobStatusRetrying
}

// Done reports whether the job reached a terminal state.
func (s JobStatus) Done() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is one URL waiting to be resolved as part of a batch.
type Job struct {
	ID         JobID
	BatchID    BatchID
	URL        string
	Options    ResolveOptions
	Status     JobStatus
	Attempts   int
	MaxRetries int
	Plan       DownloadPlan
	ErrorCode  string
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// NextAttemptAt holds a retrying job back until the given time.
	NextAttemptAt time.Time
}

// NewJob creates a new queued resolution job.
func NewJob(id JobID, batchID BatchID, url string, opts ResolveOptions, maxRetries int) *Job {
	now := time.Now()
	return &Job{
		ID:         id,
		BatchID:    batchID,
		URL:        url,
		Options:    opts,
		Status:     JobStatusQueued,
		Attempts:   0,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CanRetry returns true if the job can be retried.
func (j *Job) CanRetry() bool {
	return j.Attempts < j.MaxRetries
}

// Ready reports whether a worker may pick the job up at now.
func (j *Job) Ready(now time.Time) bool {
	return j.Status.Runnable() && !now.Before(j.NextAttemptAt)
}

// Requeue puts an interrupted job back in the queue without counting the
// attempt.
func (j *Job) Requeue() {
	j.Status = JobStatusQueued
	j.NextAttemptAt = time.Time{}
	j.UpdatedAt = time.Now()
}

// MarkProcessing updates the job status to processing.
func (j *Job) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now()
}

// MarkCompleted stores the plan and marks the job completed.
func (j *Job) MarkCompleted(plan DownloadPlan) {
	j.Status = JobStatusCompleted
	j.Plan = plan
	j.ErrorCode = ""
	j.LastError = ""
	j.UpdatedAt = time.Now()
}

// MarkFailed records the error. Only retryable errors put the job back in the queue.
func (j *Job) MarkFailed(err error) {
	j.Attempts++
	j.ErrorCode = ErrorCode(err)
	j.LastError = err.Error()
	j.UpdatedAt = time.Now()

	if IsRetryable(err) && j.CanRetry() {
		j.Status = JobStatusRetrying
	} else {
		j.Status = JobStatusFailed
	}
}

// BatchSummary aggregates the state of a batch.
type BatchSummary struct {
	BatchID   BatchID
	Total     int
	Completed int
	Failed    int
	Pending   int
	Jobs      []*Job
}

// Done reports whether every job in the batch reached a terminal state.
func (b *BatchSummary) Done() bool {
	return b.Pending == 0
}

// Summarize builds a BatchSummary from the jobs of one batch.
func Summarize(batchID BatchID, jobs []*Job) *BatchSummary {
	s := &BatchSummary{BatchID: batchID, Total: len(jobs), Jobs: jobs}
	for _, j := range jobs {
		switch j.Status {
		case JobStatusCompleted:
			s.Completed++
		case JobStatusFailed:
			s.Failed++
		default:
			s.Pending++
		}
	}
	return s
}
