package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a single spend against one account. The amount is stored
// positive, the debit direction is implied by the entity kind.
type Expense struct {
	ID         string
	UserID     string
	AccountID  string
	Amount     decimal.Decimal
	Category   string
	OccurredAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Effect returns the balance effect this expense applies at creation time.
func (e *Expense) Effect() BalanceEffect {
	return BalanceEffect{
		Kind:      EffectDebit,
		AccountID: e.AccountID,
		Amount:    e.Amount,
	}
}

// Validate validates the expense before persisting.
func (e *Expense) Validate() error {
	return e.Effect().Validate()
}
