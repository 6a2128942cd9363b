package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iconidentify/xclip/internal/domain"
)

// InMemoryJobRepository implements JobRepository using in-memory storage.
// Jobs are stored and returned as copies, so callers never share state
// with the queue.
type InMemoryJobRepository struct {
	mu      sync.RWMutex
	jobs    map[domain.JobID]*domain.Job
	byBatch map[domain.BatchID][]domain.JobID
	queue   []domain.JobID // FIFO; may hold ids whose job is no longer runnable
}

// NewInMemoryJobRepository creates a new in-memory job repository.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	r := &InMemoryJobRepository{}
	r.reset()
	return r
}

func (r *InMemoryJobRepository) reset() {
	r.jobs = make(map[domain.JobID]*domain.Job)
	r.byBatch = make(map[domain.BatchID][]domain.JobID)
	r.queue = nil
}

func clone(job *domain.Job) *domain.Job {
	c := *job
	return &c
}

// Enqueue stores a job and, when it is runnable, queues it. Jobs that are
// already terminal (rejected URLs) are kept for batch reporting only.
func (r *InMemoryJobRepository) Enqueue(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; !exists {
		r.byBatch[job.BatchID] = append(r.byBatch[job.BatchID], job.ID)
	}
	r.jobs[job.ID] = clone(job)
	if job.Status.Runnable() {
		r.queue = append(r.queue, job.ID)
	}
	return nil
}

// Dequeue pops the oldest job that is ready to run. Retrying jobs whose
// NextAttemptAt lies in the future stay queued in place.
func (r *InMemoryJobRepository) Dequeue(ctx context.Context) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	kept := r.queue[:0]
	var next *domain.Job
	for i, id := range r.queue {
		job, ok := r.jobs[id]
		if !ok || !job.Status.Runnable() {
			continue
		}
		if job.Ready(now) {
			next = job
			kept = append(kept, r.queue[i+1:]...)
			break
		}
		kept = append(kept, id)
	}
	r.queue = kept

	if next == nil {
		return nil, domain.ErrNoJobs
	}
	return clone(next), nil
}

// Update replaces the stored job. Runnable jobs go back on the queue.
func (r *InMemoryJobRepository) Update(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.ID]; !ok {
		return domain.ErrJobNotFound
	}
	r.jobs[job.ID] = clone(job)
	if job.Status.Runnable() && !r.isQueued(job.ID) {
		r.queue = append(r.queue, job.ID)
	}
	return nil
}

func (r *InMemoryJobRepository) isQueued(id domain.JobID) bool {
	for _, q := range r.queue {
		if q == id {
			return true
		}
	}
	return false
}

// Get retrieves a job by ID.
func (r *InMemoryJobRepository) Get(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	return clone(job), nil
}

// ListByBatch returns the jobs of a batch in submission order.
func (r *InMemoryJobRepository) ListByBatch(ctx context.Context, batchID domain.BatchID) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids, ok := r.byBatch[batchID]
	if !ok {
		return nil, domain.ErrBatchNotFound
	}
	return r.collect(ids), nil
}

// ListPending returns the runnable jobs in queue order.
func (r *InMemoryJobRepository) ListPending(ctx context.Context) ([]*domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []*domain.Job
	for _, job := range r.collect(r.queue) {
		if job.Status.Runnable() {
			pending = append(pending, job)
		}
	}
	return pending, nil
}

// collect copies the jobs behind ids, skipping unknown ids. Callers hold mu.
func (r *InMemoryJobRepository) collect(ids []domain.JobID) []*domain.Job {
	out := make([]*domain.Job, 0, len(ids))
	for _, id := range ids {
		if job, ok := r.jobs[id]; ok {
			out = append(out, clone(job))
		}
	}
	return out
}

// Stats returns queue statistics.
func (r *InMemoryJobRepository) Stats(ctx context.Context) (*QueueStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &QueueStats{}
	for _, job := range r.jobs {
		stats.count(job.Status)
	}
	return stats, nil
}

// Clear removes every job and batch.
func (r *InMemoryJobRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}
