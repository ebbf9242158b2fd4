package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountInUse    = errors.New("account is referenced by existing operations")

	// Ownership errors
	ErrNotOwner = errors.New("resource does not belong to user")

	// Operation errors
	ErrExpenseNotFound = errors.New("expense not found")
	ErrIncomeNotFound  = errors.New("income not found")
	ErrInvalidAmount   = errors.New("amount must not be negative")
	ErrMissingAccount  = errors.New("operation has no account")

	// Receipt errors
	ErrReceiptNotFound  = errors.New("receipt not found")
	ErrDuplicateReceipt = errors.New("receipt already exists")
	ErrReceiptInUse     = errors.New("receipt is referenced elsewhere")
	ErrMissingTotal     = errors.New("receipt has no total sum")
	ErrNoProducts       = errors.New("receipt has no product lines")
	ErrSellerNotFound   = errors.New("seller not found")

	// Engine errors
	ErrCurrencyMismatch  = errors.New("accounts have different currencies")
	ErrConcurrentUpdate  = errors.New("concurrent update detected")
	ErrBalanceDrift      = errors.New("account balance does not match operations")
	ErrInvalidEffectKind = errors.New("unknown balance effect kind")
)
