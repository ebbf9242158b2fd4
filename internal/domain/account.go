package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind describes how the account is backed.
type AccountKind string

const (
	AccountKindDebit  AccountKind = "debit"
	AccountKindCredit AccountKind = "credit"
	AccountKindCash   AccountKind = "cash"
)

// Valid account kinds
var validAccountKinds = map[AccountKind]bool{
	AccountKindDebit:  true,
	AccountKindCredit: true,
	AccountKindCash:   true,
}

// IsValid checks if the kind is a known account kind.
func (k AccountKind) IsValid() bool {
	return validAccountKinds[k]
}

// Account represents a user-owned monetary bucket with a cached balance.
// The balance is always expressed in the account's currency and is mutated
// only through the balance reconciliation engine.
type Account struct {
	ID        string
	UserID    string
	Name      string
	Currency  string
	Balance   decimal.Decimal
	Kind      AccountKind
	Bank      string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnedBy reports whether the account belongs to the given user.
func (a *Account) OwnedBy(userID string) bool {
	return a.UserID == userID
}

// ApplyDebit returns the balance after a debit. Balances may go negative,
// overdraft-style tracking is intentional.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
