package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/infrastructure/logging"
	"github.com/vkotov/finbook/internal/usecase"
)

type stubImporter struct {
	receipt *domain.Receipt
	err     error
}

func (s *stubImporter) ImportReceipt(ctx context.Context, input usecase.ImportReceiptInput) (*domain.Receipt, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

func newTestQueue(importer Importer, cfg QueueConfig) *ImportQueue {
	logger := logging.New(slog.LevelError, "json")
	return NewImportQueue(importer, logger, nil, cfg)
}

func startQueue(t *testing.T, q *ImportQueue) context.Context {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go q.Start(ctx)
	return ctx
}

func TestImportQueue_ProcessesJobToCompletion(t *testing.T) {
	importer := &stubImporter{receipt: &domain.Receipt{ID: "rcp-1", UserID: "u1"}}
	q := newTestQueue(importer, QueueConfig{Workers: 1})
	ctx := startQueue(t, q)

	job, err := q.Enqueue(ctx, usecase.ImportReceiptInput{UserID: "u1"})
	require.NoError(t, err)
	require.Equal(t, StatusPending, job.Status)
	require.NotEmpty(t, job.ID)

	require.Eventually(t, func() bool {
		got, err := q.Job(ctx, "u1", job.ID)
		return err == nil && got.Status == StatusCompleted
	}, time.Second, 10*time.Millisecond)

	got, err := q.Job(ctx, "u1", job.ID)
	require.NoError(t, err)
	require.Equal(t, "rcp-1", got.ReceiptID)
	require.Empty(t, got.Error)
}

func TestImportQueue_RecordsFailure(t *testing.T) {
	importer := &stubImporter{err: domain.ErrDuplicateReceipt}
	q := newTestQueue(importer, QueueConfig{Workers: 1})
	ctx := startQueue(t, q)

	job, err := q.Enqueue(ctx, usecase.ImportReceiptInput{UserID: "u1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := q.Job(ctx, "u1", job.ID)
		return err == nil && got.Status == StatusFailed
	}, time.Second, 10*time.Millisecond)

	got, err := q.Job(ctx, "u1", job.ID)
	require.NoError(t, err)
	require.Contains(t, got.Error, "receipt already exists")
	require.Empty(t, got.ReceiptID)
}

func TestImportQueue_ScopesJobsToOwner(t *testing.T) {
	importer := &stubImporter{receipt: &domain.Receipt{ID: "rcp-1", UserID: "u1"}}
	q := newTestQueue(importer, QueueConfig{Workers: 1})
	ctx := startQueue(t, q)

	job, err := q.Enqueue(ctx, usecase.ImportReceiptInput{UserID: "u1"})
	require.NoError(t, err)

	_, err = q.Job(ctx, "u2", job.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = q.Job(ctx, "u1", "no-such-job")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestImportQueue_RejectsWhenFull(t *testing.T) {
	importer := &stubImporter{receipt: &domain.Receipt{ID: "rcp-1"}}
	// Never started, so nothing drains the channel.
	q := newTestQueue(importer, QueueConfig{Workers: 1})
	ctx := context.Background()

	for i := 0; i < queueCapacity; i++ {
		_, err := q.Enqueue(ctx, usecase.ImportReceiptInput{UserID: fmt.Sprintf("u%d", i)})
		require.NoError(t, err)
	}

	_, err := q.Enqueue(ctx, usecase.ImportReceiptInput{UserID: "overflow"})
	require.ErrorIs(t, err, ErrQueueFull)

	// The rejected job must not linger in the registry.
	q.mu.RLock()
	size := len(q.jobs)
	q.mu.RUnlock()
	require.Equal(t, queueCapacity, size)
}

func TestImportQueue_DefaultsConfig(t *testing.T) {
	q := newTestQueue(&stubImporter{}, QueueConfig{})
	require.Equal(t, 2, q.workers)
	require.Equal(t, time.Hour, q.retention)
}
