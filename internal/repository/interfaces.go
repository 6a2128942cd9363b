package repository

import (
	"context"

	"github.com/iconidentify/xclip/internal/domain"
)

// JobRepository manages the batch resolution queue.
type JobRepository interface {
	// Enqueue adds a job to the queue.
	Enqueue(ctx context.Context, job *domain.Job) error

	// Dequeue retrieves the next queued or retrying job (FIFO).
	Dequeue(ctx context.Context) (*domain.Job, error)

	// Update modifies job state.
	Update(ctx context.Context, job *domain.Job) error

	// Get retrieves a job by ID.
	Get(ctx context.Context, id domain.JobID) (*domain.Job, error)

	// ListByBatch returns the jobs of a batch in submission order.
	ListByBatch(ctx context.Context, batchID domain.BatchID) ([]*domain.Job, error)

	// ListPending returns all queued/retrying jobs.
	ListPending(ctx context.Context) ([]*domain.Job, error)

	// Stats returns queue statistics.
	Stats(ctx context.Context) (*QueueStats, error)
}

// QueueStats contains job queue statistics.
type QueueStats struct {
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Retrying   int `json:"retrying"`
}

func (s *QueueStats) count(status domain.JobStatus) {
	switch status {
	case domain.JobStatusQueued:
		s.Queued++
	case domain.JobStatusProcessing:
		s.Processing++
	case domain.JobStatusCompleted:
		s.Completed++
	case domain.JobStatusFailed:
		s.Failed++
	case domain.JobStatusRetrying:
		s.Retrying++
	}
}
