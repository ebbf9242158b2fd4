package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vkotov/finbook/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrReceiptNotFound, http.StatusNotFound},
		{domain.ErrNotOwner, http.StatusForbidden},
		{domain.ErrDuplicateReceipt, http.StatusConflict},
		{domain.ErrAccountInUse, http.StatusConflict},
		{domain.ErrEmailTaken, http.StatusConflict},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrNoProducts, http.StatusBadRequest},
		{domain.ErrCurrencyMismatch, http.StatusBadRequest},
		{domain.ErrPasswordTooWeak, http.StatusBadRequest},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrExpiredToken, http.StatusUnauthorized},
		{domain.ErrConcurrentUpdate, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.want {
				t.Fatalf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestMapDomainError_WrappedErrors(t *testing.T) {
	err := fmt.Errorf("apply spend: %w", domain.ErrConcurrentUpdate)
	if got := mapDomainError(err); got != http.StatusServiceUnavailable {
		t.Fatalf("expected wrapped errors to keep their mapping, got %d", got)
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses?limit=25&offset=abc", nil)

	if got := parseIntQuery(req, "limit", 50); got != 25 {
		t.Fatalf("expected limit 25, got %d", got)
	}

	if got := parseIntQuery(req, "offset", 0); got != 0 {
		t.Fatalf("expected fallback for invalid offset, got %d", got)
	}

	if got := parseIntQuery(req, "missing", 7); got != 7 {
		t.Fatalf("expected default for missing param, got %d", got)
	}
}

func TestRequireMutator(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", nil)

	if _, ok := requireMutator(rec, req); ok {
		t.Fatalf("expected anonymous request to be rejected")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous request, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = req.WithContext(domain.WithUser(req.Context(), &domain.User{ID: "u1", Role: domain.RoleViewer}))
	if _, ok := requireMutator(rec, req); ok {
		t.Fatalf("expected viewer to be rejected")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = req.WithContext(domain.WithUser(req.Context(), &domain.User{ID: "u2", Role: domain.RoleMember}))
	userID, ok := requireMutator(rec, req)
	if !ok || userID != "u2" {
		t.Fatalf("expected member to pass, got id=%q ok=%v", userID, ok)
	}
}
