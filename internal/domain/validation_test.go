package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr error
	}{
		{name: "positive", amount: decimal.NewFromInt(100)},
		{name: "fractional", amount: decimal.RequireFromString("0.01")},
		{name: "zero rejected", amount: decimal.Zero, wantErr: ErrInvalidAmount},
		{name: "negative rejected", amount: decimal.NewFromInt(-5), wantErr: ErrInvalidAmount},
		{name: "over cap", amount: decimal.RequireFromString("1000000001"), wantErr: ErrAmountTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(tt.amount)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateCurrency(t *testing.T) {
	if err := ValidateCurrency("rub"); err != nil {
		t.Fatalf("expected lowercase code to normalize, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}
