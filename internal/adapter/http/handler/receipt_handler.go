package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vkotov/finbook/internal/adapter/http/dto"
	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/jobs"
	"github.com/vkotov/finbook/internal/usecase"
)

// ReceiptService defines the receipt operations needed by the handler.
type ReceiptService interface {
	CreateReceipt(ctx context.Context, input usecase.CreateReceiptInput) (*domain.Receipt, error)
	ImportReceipt(ctx context.Context, input usecase.ImportReceiptInput) (*domain.Receipt, error)
	UpdateReceipt(ctx context.Context, input usecase.UpdateReceiptInput) (*domain.Receipt, error)
	DeleteReceipt(ctx context.Context, userID, receiptID string) error
	GetReceipt(ctx context.Context, userID, receiptID string) (*domain.Receipt, error)
	ListReceipts(ctx context.Context, input usecase.ListReceiptsInput) ([]*domain.Receipt, error)
}

// ReceiptImporter queues receipt payloads for background import.
type ReceiptImporter interface {
	Enqueue(ctx context.Context, input usecase.ImportReceiptInput) (*jobs.ImportJob, error)
	Job(ctx context.Context, userID, jobID string) (*jobs.ImportJob, error)
}

// ReceiptHandler handles receipt-related HTTP requests.
type ReceiptHandler struct {
	service  ReceiptService
	importer ReceiptImporter
}

// NewReceiptHandler creates a new ReceiptHandler. The importer is optional;
// without it the async import endpoints return 503.
func NewReceiptHandler(service ReceiptService, importer ReceiptImporter) *ReceiptHandler {
	return &ReceiptHandler{service: service, importer: importer}
}

// Create handles POST /receipts.
func (h *ReceiptHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireMutator(w, r)
	if !ok {
		return
	}

	var req dto.CreateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	receipt, err := h.service.CreateReceipt(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReceiptFromDomain(receipt))
}

// Import handles POST /receipts/import. The payload is imported
// synchronously; the total is always derived from the product lines.
func (h *ReceiptHandler) Import(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireMutator(w, r)
	if !ok {
		return
	}

	var req dto.CreateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	receipt, err := h.service.ImportReceipt(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ReceiptFromDomain(receipt))
}

// ImportAsync handles POST /receipts/import/async. The payload is queued
// and processed by the import workers.
func (h *ReceiptHandler) ImportAsync(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireMutator(w, r)
	if !ok {
		return
	}

	if h.importer == nil {
		writeError(w, http.StatusServiceUnavailable, "import queue unavailable", "")
		return
	}

	var req dto.CreateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	job, err := h.importer.Enqueue(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "import queue full", "")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, dto.ImportJobFromJobs(job))
}

// ImportStatus handles GET /receipts/import/{jobID}.
func (h *ReceiptHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	if h.importer == nil {
		writeError(w, http.StatusServiceUnavailable, "import queue unavailable", "")
		return
	}

	job, err := h.importer.Job(r.Context(), userID, chi.URLParam(r, "jobID"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "import job not found", "")
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ImportJobFromJobs(job))
}

// Update handles PUT /receipts/{id}.
func (h *ReceiptHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireMutator(w, r)
	if !ok {
		return
	}

	var req dto.UpdateReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	receipt, err := h.service.UpdateReceipt(r.Context(), req.ToUseCaseInput(userID, chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceiptFromDomain(receipt))
}

// Delete handles DELETE /receipts/{id}.
func (h *ReceiptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireMutator(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteReceipt(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /receipts/{id}.
func (h *ReceiptHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	receipt, err := h.service.GetReceipt(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceiptFromDomain(receipt))
}

// List handles GET /receipts.
func (h *ReceiptHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	receipts, err := h.service.ListReceipts(r.Context(), usecase.ListReceiptsInput{
		UserID: userID,
		Limit:  parseIntQuery(r, "limit", 0),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReceiptsFromDomain(receipts))
}
