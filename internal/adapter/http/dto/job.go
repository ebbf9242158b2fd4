package dto

import (
	"time"

	"github.com/vkotov/finbook/internal/jobs"
)

// ImportJobResponse represents a queued receipt import in API responses.
type ImportJobResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	ReceiptID string    `json:"receipt_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImportJobFromJobs converts an import job to a response.
func ImportJobFromJobs(j *jobs.ImportJob) *ImportJobResponse {
	return &ImportJobResponse{
		ID:        j.ID,
		Status:    string(j.Status),
		ReceiptID: j.ReceiptID,
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
