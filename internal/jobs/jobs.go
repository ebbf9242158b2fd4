package jobs

import (
	"errors"
	"time"

	"github.com/vkotov/finbook/internal/usecase"
)

// Status is the lifecycle state of a queued import.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrNotFound is returned when a job does not exist or belongs to
// another user.
var ErrNotFound = errors.New("import job not found")

// ErrQueueFull is returned when the queue cannot accept more work.
var ErrQueueFull = errors.New("import queue full")

// ImportJob tracks one queued receipt import.
type ImportJob struct {
	ID        string
	UserID    string
	Status    Status
	ReceiptID string
	Error     string
	Input     usecase.ImportReceiptInput
	CreatedAt time.Time
	UpdatedAt time.Time
}
