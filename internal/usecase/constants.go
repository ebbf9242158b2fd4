package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds every balance-affecting transaction.
	DefaultTransactionTimeout = 30 * time.Second

	// DefaultPageSize is the default page size for list operations.
	DefaultPageSize = 20

	// MaxPageSize is the maximum page size for list operations.
	MaxPageSize = 100
)
