package domain

import (
	"github.com/shopspring/decimal"
)

// EffectKind is the direction of a balance effect.
type EffectKind string

const (
	// EffectDebit decreases the account balance.
	EffectDebit EffectKind = "debit"
	// EffectCredit increases the account balance.
	EffectCredit EffectKind = "credit"
)

// BalanceEffect is the signed effect a single operation has on one account.
// Every balance-affecting entity (expense, income, receipt) reduces to
// exactly one effect, and all of them go through the same apply path in the
// reconciliation engine.
type BalanceEffect struct {
	Kind      EffectKind
	AccountID string
	Amount    decimal.Decimal
}

// Validate checks the effect is well-formed. Amounts are stored positive,
// direction is carried by the kind.
func (e BalanceEffect) Validate() error {
	if e.AccountID == "" {
		return ErrMissingAccount
	}

	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}

	return nil
}

// Inverse returns the effect that undoes this one.
func (e BalanceEffect) Inverse() BalanceEffect {
	kind := EffectDebit
	if e.Kind == EffectDebit {
		kind = EffectCredit
	}

	return BalanceEffect{Kind: kind, AccountID: e.AccountID, Amount: e.Amount}
}

// ApplyTo returns the account balance after this effect.
func (e BalanceEffect) ApplyTo(account *Account) decimal.Decimal {
	if e.Kind == EffectDebit {
		return account.ApplyDebit(e.Amount)
	}

	return account.ApplyCredit(e.Amount)
}
