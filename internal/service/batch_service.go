package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iconidentify/xclip/internal/config"
	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/repository"
	"github.com/iconidentify/xclip/pkg/twitter"
)

var (
	ErrEmptyBatch    = errors.New("batch has no urls")
	ErrBatchTooLarge = errors.New("batch exceeds the maximum size")
)

// BatchService queues post URLs for resolution by the worker pool.
type BatchService struct {
	jobRepo    repository.JobRepository
	maxSize    int
	maxRetries int
	logger     *slog.Logger
}

// NewBatchService creates a batch service.
func NewBatchService(
	jobRepo repository.JobRepository,
	resolveCfg config.ResolveConfig,
	workerCfg config.WorkerConfig,
	logger *slog.Logger,
) *BatchService {
	return &BatchService{
		jobRepo:    jobRepo,
		maxSize:    resolveCfg.MaxBatchSize,
		maxRetries: workerCfg.MaxRetries,
		logger:     logger.With("component", "batch"),
	}
}

// SubmitBatch creates one job per URL under a new batch id. URLs that do
// not parse are recorded as failed jobs instead of being queued.
func (s *BatchService) SubmitBatch(ctx context.Context, urls []string, opts domain.ResolveOptions) (*domain.BatchSummary, error) {
	if len(urls) == 0 {
		return nil, ErrEmptyBatch
	}
	if s.maxSize > 0 && len(urls) > s.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(urls), s.maxSize)
	}

	batchID := domain.BatchID(uuid.New().String())
	jobs := make([]*domain.Job, 0, len(urls))
	for _, u := range urls {
		job := domain.NewJob(domain.JobID(uuid.New().String()), batchID, u, opts, s.maxRetries)
		if ref := twitter.ParsePostURL(u); !ref.Valid {
			job.MarkFailed(ref.Err)
		}
		if err := s.jobRepo.Enqueue(ctx, job); err != nil {
			return nil, fmt.Errorf("enqueue job: %w", err)
		}
		jobs = append(jobs, job)
	}

	summary := domain.Summarize(batchID, jobs)
	s.logger.Info("batch submitted",
		"batch_id", batchID,
		"jobs", summary.Total,
		"rejected", summary.Failed,
	)
	return summary, nil
}

// GetBatch returns the current state of a batch.
func (s *BatchService) GetBatch(ctx context.Context, id domain.BatchID) (*domain.BatchSummary, error) {
	jobs, err := s.jobRepo.ListByBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.Summarize(id, jobs), nil
}

// GetJob returns a single job.
func (s *BatchService) GetJob(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	return s.jobRepo.Get(ctx, id)
}

// Stats returns queue statistics.
func (s *BatchService) Stats(ctx context.Context) (*repository.QueueStats, error) {
	return s.jobRepo.Stats(ctx)
}
