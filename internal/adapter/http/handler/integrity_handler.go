package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vkotov/finbook/internal/adapter/http/dto"
	"github.com/vkotov/finbook/internal/usecase"
)

// IntegrityService defines the integrity operations needed by the handler.
type IntegrityService interface {
	CheckAccount(ctx context.Context, accountID string) (*usecase.IntegrityResult, error)
	GenerateReport(ctx context.Context, userID string) (*usecase.IntegrityReport, error)
}

// IntegrityHandler handles balance integrity endpoints.
type IntegrityHandler struct {
	service  IntegrityService
	accounts AccountService
}

// NewIntegrityHandler creates a new IntegrityHandler.
func NewIntegrityHandler(service IntegrityService, accounts AccountService) *IntegrityHandler {
	return &IntegrityHandler{service: service, accounts: accounts}
}

// CheckAccount handles GET /integrity/accounts/{id}.
func (h *IntegrityHandler) CheckAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	accountID := chi.URLParam(r, "id")

	// Ownership check before recomputing.
	if _, err := h.accounts.GetAccount(r.Context(), userID, accountID); err != nil {
		writeDomainError(w, err)
		return
	}

	result, err := h.service.CheckAccount(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IntegrityResultFromUseCase(result))
}

// Report handles GET /integrity/report.
func (h *IntegrityHandler) Report(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	report, err := h.service.GenerateReport(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IntegrityReportFromUseCase(report))
}
