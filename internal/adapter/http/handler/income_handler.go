package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vkotov/finbook/internal/adapter/http/dto"
	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/usecase"
)

// IncomeService defines the income operations needed by the handler.
type IncomeService interface {
	CreateIncome(ctx context.Context, input usecase.CreateIncomeInput) (*domain.Income, error)
	UpdateIncome(ctx context.Context, input usecase.UpdateIncomeInput) (*domain.Income, error)
	DeleteIncome(ctx context.Context, userID, incomeID string) error
	GetIncome(ctx context.Context, userID, incomeID string) (*domain.Income, error)
	ListIncomes(ctx context.Context, input usecase.ListIncomesInput) ([]*domain.Income, error)
}

// IncomeHandler handles income-related HTTP requests.
type IncomeHandler struct {
	service IncomeService
}

// NewIncomeHandler creates a new IncomeHandler.
func NewIncomeHandler(service IncomeService) *IncomeHandler {
	return &IncomeHandler{service: service}
}

// Create handles POST /incomes.
func (h *IncomeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireMutator(w, r)
	if !ok {
		return
	}

	var req dto.CreateIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	income, err := h.service.CreateIncome(r.Context(), req.ToUseCaseInput(userID))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.IncomeFromDomain(income))
}

// Update handles PUT /incomes/{id}.
func (h *IncomeHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireMutator(w, r)
	if !ok {
		return
	}

	var req dto.UpdateIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	income, err := h.service.UpdateIncome(r.Context(), req.ToUseCaseInput(userID, chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IncomeFromDomain(income))
}

// Delete handles DELETE /incomes/{id}.
func (h *IncomeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireMutator(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteIncome(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Get handles GET /incomes/{id}.
func (h *IncomeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	income, err := h.service.GetIncome(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IncomeFromDomain(income))
}

// List handles GET /incomes.
func (h *IncomeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromRequest(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	incomes, err := h.service.ListIncomes(r.Context(), usecase.ListIncomesInput{
		UserID: userID,
		Limit:  parseIntQuery(r, "limit", 0),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.IncomesFromDomain(incomes))
}
