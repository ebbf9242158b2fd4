package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAccount_ApplyDebit(t *testing.T) {
	tests := []struct {
		name    string
		balance decimal.Decimal
		amount  decimal.Decimal
		want    decimal.Decimal
	}{
		{
			name:    "normal debit",
			balance: decimal.NewFromInt(1000),
			amount:  decimal.NewFromInt(100),
			want:    decimal.NewFromInt(900),
		},
		{
			name:    "debit below zero is allowed",
			balance: decimal.NewFromInt(50),
			amount:  decimal.NewFromInt(100),
			want:    decimal.NewFromInt(-50),
		},
		{
			name:    "zero debit",
			balance: decimal.NewFromInt(1000),
			amount:  decimal.Zero,
			want:    decimal.NewFromInt(1000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Account{Balance: tt.balance}
			got := a.ApplyDebit(tt.amount)
			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAccount_ApplyCredit(t *testing.T) {
	a := &Account{Balance: decimal.NewFromInt(900)}
	got := a.ApplyCredit(decimal.NewFromInt(100))
	if !got.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected 1000, got %s", got)
	}
}

func TestAccount_OwnedBy(t *testing.T) {
	a := &Account{UserID: "user-1"}

	if !a.OwnedBy("user-1") {
		t.Error("expected account to be owned by user-1")
	}

	if a.OwnedBy("user-2") {
		t.Error("expected account not to be owned by user-2")
	}
}

func TestAccountKind_IsValid(t *testing.T) {
	for _, kind := range []AccountKind{AccountKindDebit, AccountKindCredit, AccountKindCash} {
		if !kind.IsValid() {
			t.Errorf("expected %s to be valid", kind)
		}
	}

	if AccountKind("savings").IsValid() {
		t.Error("expected unknown kind to be invalid")
	}
}
