package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/infrastructure/logging"
	"github.com/vkotov/finbook/internal/infrastructure/metrics"
	"github.com/vkotov/finbook/internal/usecase"
)

const queueCapacity = 256

// Importer performs the actual receipt import.
type Importer interface {
	ImportReceipt(ctx context.Context, input usecase.ImportReceiptInput) (*domain.Receipt, error)
}

// ImportQueue processes receipt imports on a fixed worker pool. Jobs and
// their statuses live in memory; finished jobs are dropped after the
// retention window.
type ImportQueue struct {
	importer  Importer
	logger    *logging.Logger
	metrics   *metrics.Metrics
	workers   int
	retention time.Duration

	work chan string

	mu   sync.RWMutex
	jobs map[string]*ImportJob
}

// QueueConfig holds ImportQueue settings.
type QueueConfig struct {
	Workers   int
	Retention time.Duration
}

// NewImportQueue creates a new ImportQueue.
func NewImportQueue(importer Importer, logger *logging.Logger, m *metrics.Metrics, cfg QueueConfig) *ImportQueue {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Retention <= 0 {
		cfg.Retention = time.Hour
	}

	return &ImportQueue{
		importer:  importer,
		logger:    logger,
		metrics:   m,
		workers:   cfg.Workers,
		retention: cfg.Retention,
		work:      make(chan string, queueCapacity),
		jobs:      make(map[string]*ImportJob),
	}
}

// Start launches the worker pool and the retention sweeper. It blocks
// until the context is cancelled.
func (q *ImportQueue) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.worker(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		q.sweep(ctx)
	}()

	wg.Wait()
}

// Enqueue registers a job and queues it for processing.
func (q *ImportQueue) Enqueue(ctx context.Context, input usecase.ImportReceiptInput) (*ImportJob, error) {
	now := time.Now().UTC()
	job := &ImportJob{
		ID:        uuid.NewString(),
		UserID:    input.UserID,
		Status:    StatusPending,
		Input:     input,
		CreatedAt: now,
		UpdatedAt: now,
	}

	q.mu.Lock()
	q.jobs[job.ID] = job
	q.mu.Unlock()

	select {
	case q.work <- job.ID:
	default:
		q.mu.Lock()
		delete(q.jobs, job.ID)
		q.mu.Unlock()
		return nil, ErrQueueFull
	}

	if q.metrics != nil {
		q.metrics.ImportJobsQueued.Inc()
	}

	return snapshot(job), nil
}

// Job returns a job by ID, scoped to its owner.
func (q *ImportQueue) Job(ctx context.Context, userID, jobID string) (*ImportJob, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	job, ok := q.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil, ErrNotFound
	}

	return snapshot(job), nil
}

func (q *ImportQueue) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case jobID := <-q.work:
			q.process(ctx, jobID)
		}
	}
}

func (q *ImportQueue) process(ctx context.Context, jobID string) {
	q.mu.Lock()
	job, ok := q.jobs[jobID]
	if !ok {
		q.mu.Unlock()
		return
	}
	job.Status = StatusRunning
	job.UpdatedAt = time.Now().UTC()
	input := job.Input
	q.mu.Unlock()

	receipt, err := q.importer.ImportReceipt(ctx, input)

	q.mu.Lock()
	job.UpdatedAt = time.Now().UTC()
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
	} else {
		job.Status = StatusCompleted
		job.ReceiptID = receipt.ID
	}
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.ImportJobsCompleted.WithLabelValues(string(job.Status)).Inc()
	}

	if err != nil {
		q.logger.ErrorCtx(ctx, "receipt import failed",
			"job_id", jobID,
			"user_id", input.UserID,
			"error", err)
		return
	}

	q.logger.InfoCtx(ctx, "receipt imported",
		"job_id", jobID,
		"receipt_id", receipt.ID)
}

// sweep drops finished jobs older than the retention window.
func (q *ImportQueue) sweep(ctx context.Context) {
	ticker := time.NewTicker(q.retention / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-q.retention)

			q.mu.Lock()
			for id, job := range q.jobs {
				done := job.Status == StatusCompleted || job.Status == StatusFailed
				if done && job.UpdatedAt.Before(cutoff) {
					delete(q.jobs, id)
				}
			}
			q.mu.Unlock()
		}
	}
}

func snapshot(job *ImportJob) *ImportJob {
	copied := *job
	return &copied
}
