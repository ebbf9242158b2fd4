package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Income is a single credit to one account. The amount is stored positive,
// the credit direction is implied by the entity kind.
type Income struct {
	ID         string
	UserID     string
	AccountID  string
	Amount     decimal.Decimal
	Category   string
	OccurredAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Effect returns the balance effect this income applies at creation time.
func (i *Income) Effect() BalanceEffect {
	return BalanceEffect{
		Kind:      EffectCredit,
		AccountID: i.AccountID,
		Amount:    i.Amount,
	}
}

// Validate validates the income before persisting.
func (i *Income) Validate() error {
	return i.Effect().Validate()
}
