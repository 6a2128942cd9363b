package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/xclip/internal/domain"
	"github.com/iconidentify/xclip/internal/repository"
)

// ErrShutdownTimeout is returned when workers don't stop within timeout.
var ErrShutdownTimeout = errors.New("worker pool shutdown timed out")

// Resolver resolves a single post URL into a download plan.
type Resolver interface {
	ResolveMedia(ctx context.Context, rawURL string, opts domain.ResolveOptions) (domain.DownloadPlan, error)
}

// Pool manages a pool of workers draining the batch resolution queue.
type Pool struct {
	workers      int
	pollInterval time.Duration
	jobRepo      repository.JobRepository
	resolver     Resolver
	logger       *slog.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// Config holds worker pool configuration.
type Config struct {
	Workers      int
	PollInterval time.Duration
}

// NewPool creates a new worker pool.
func NewPool(
	cfg Config,
	jobRepo repository.JobRepository,
	resolver Resolver,
	logger *slog.Logger,
) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:      cfg.Workers,
		pollInterval: cfg.PollInterval,
		jobRepo:      jobRepo,
		resolver:     resolver,
		logger:       logger.With("component", "worker"),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches all workers.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool", "workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop cancels in-flight resolutions and waits for workers to exit.
func (p *Pool) Stop(timeout time.Duration) error {
	p.logger.Info("stopping worker pool")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger := p.logger.With("worker_id", id)
	logger.Debug("worker started")

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			logger.Debug("worker stopping")
			return
		case <-ticker.C:
			// Drain everything that is ready before waiting for the next tick.
			for p.ctx.Err() == nil && p.processNextJob(logger) {
			}
		}
	}
}

// processNextJob resolves one job. It reports whether the worker should
// immediately look for another.
func (p *Pool) processNextJob(logger *slog.Logger) bool {
	job, err := p.jobRepo.Dequeue(p.ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoJobs) {
			logger.Error("failed to dequeue job", "error", err)
		}
		return false
	}

	logger = logger.With("job_id", job.ID, "batch_id", job.BatchID)
	logger.Info("processing job", "url", job.URL, "attempt", job.Attempts+1)

	job.MarkProcessing()
	if err := p.jobRepo.Update(p.ctx, job); err != nil {
		logger.Error("failed to update job status", "error", err)
		return false
	}

	plan, err := p.resolver.ResolveMedia(p.ctx, job.URL, job.Options)
	if err != nil {
		p.handleJobFailure(logger, job, err)
		return true
	}

	job.MarkCompleted(plan)
	if err := p.jobRepo.Update(p.ctx, job); err != nil {
		logger.Error("failed to mark job completed", "error", err)
	}

	logger.Info("job completed successfully", "plan", plan.Kind())
	return true
}

func (p *Pool) handleJobFailure(logger *slog.Logger, job *domain.Job, err error) {
	if p.ctx.Err() != nil {
		// Interrupted by Stop, not by the upstream.
		job.Requeue()
		logger.Info("resolution interrupted by shutdown, job requeued", "error", err)
	} else {
		job.MarkFailed(err)
	}

	switch job.Status {
	case domain.JobStatusQueued:
	case domain.JobStatusRetrying:
		// Wait at least one poll tick before the next attempt.
		job.NextAttemptAt = time.Now().Add(p.pollInterval)
		logger.Warn("job failed, will retry",
			"error", err,
			"code", job.ErrorCode,
			"attempt", job.Attempts,
			"max_retries", job.MaxRetries,
		)
	default:
		logger.Error("job failed permanently",
			"error", err,
			"code", job.ErrorCode,
			"attempts", job.Attempts,
		)
	}

	// The pool context may already be cancelled during shutdown; the final
	// state still has to land in the repository.
	if updateErr := p.jobRepo.Update(context.WithoutCancel(p.ctx), job); updateErr != nil {
		logger.Error("failed to update job after failure", "error", updateErr)
	}
}
