package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Account, error)
	Delete(ctx context.Context, id string) error
}

// ExpenseRepository defines data access for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Expense, error)
	Update(ctx context.Context, tx Transaction, expense *domain.Expense) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Expense, error)
}

// IncomeRepository defines data access for incomes.
type IncomeRepository interface {
	Create(ctx context.Context, tx Transaction, income *domain.Income) error
	GetByID(ctx context.Context, id string) (*domain.Income, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Income, error)
	Update(ctx context.Context, tx Transaction, income *domain.Income) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Income, error)
}

// ReceiptRepository defines data access for receipts.
type ReceiptRepository interface {
	Create(ctx context.Context, tx Transaction, receipt *domain.Receipt) error
	GetByID(ctx context.Context, id string) (*domain.Receipt, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Receipt, error)
	Update(ctx context.Context, tx Transaction, receipt *domain.Receipt) error
	Delete(ctx context.Context, tx Transaction, id string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Receipt, error)
	// ExistsByDateAndTotal reports whether the user already has a receipt
	// with the same date and total sum (manual entry duplicate key).
	ExistsByDateAndTotal(ctx context.Context, tx Transaction, userID string, date time.Time, total decimal.Decimal) (bool, error)
	// ExistsByNumber reports whether the user already has a receipt with the
	// same receipt number (import entry duplicate key).
	ExistsByNumber(ctx context.Context, tx Transaction, userID, number string) (bool, error)
}

// ProductRepository defines data access for receipt line items.
type ProductRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, products []*domain.Product) error
	DeleteByReceipt(ctx context.Context, tx Transaction, receiptID string) error
	ListByReceipt(ctx context.Context, receiptID string) ([]*domain.Product, error)
}

// SellerRepository defines data access for sellers.
type SellerRepository interface {
	// Upsert creates the seller or updates address/place fields,
	// keyed by (user, name).
	Upsert(ctx context.Context, tx Transaction, seller *domain.Seller) (*domain.Seller, error)
	GetByID(ctx context.Context, id string) (*domain.Seller, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Seller, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// IntegrityRepository recomputes account balances from persisted operations.
type IntegrityRepository interface {
	// CalculatedBalance sums the signed effects of every expense, income and
	// receipt currently persisted against the account.
	CalculatedBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient concurrency failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
