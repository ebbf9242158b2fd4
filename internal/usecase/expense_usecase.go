package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/infrastructure/metrics"
)

// ExpenseUseCase handles expense workflows. Every balance change goes
// through the reconciliation engine inside a single transaction.
type ExpenseUseCase struct {
	txManager   TransactionManager
	expenseRepo ExpenseRepository
	balance     *BalanceUseCase
	cache       Cache
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	txManager TransactionManager,
	expenseRepo ExpenseRepository,
	balance *BalanceUseCase,
	cache Cache,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		txManager:   txManager,
		expenseRepo: expenseRepo,
		balance:     balance,
		cache:       cache,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		retrier:     retrier,
		metrics:     m,
	}
}

// CreateExpenseInput represents input for creating an expense.
type CreateExpenseInput struct {
	UserID     string
	AccountID  string
	Amount     decimal.Decimal
	Category   string
	OccurredAt time.Time
}

// CreateExpense persists the expense and debits the account atomically.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.Expense, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var expense *domain.Expense

	err := uc.withRetry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		now := time.Now().UTC()
		occurredAt := input.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = now
		}

		expense = &domain.Expense{
			ID:         uc.idGen.Generate(),
			UserID:     input.UserID,
			AccountID:  input.AccountID,
			Amount:     input.Amount,
			Category:   input.Category,
			OccurredAt: occurredAt,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := expense.Validate(); err != nil {
			return err
		}

		if err := uc.expenseRepo.Create(txCtx, tx, expense); err != nil {
			return err
		}

		account, err := uc.balance.ApplySpend(txCtx, tx, input.UserID, input.AccountID, input.Amount)
		if err != nil {
			return err
		}

		if err := uc.emitEvent(txCtx, tx, domain.EventTypeExpenseCreated, expense, account); err != nil {
			return err
		}

		if err := uc.audit(txCtx, tx, input.UserID, domain.AuditActionExpenseCreate, expense.ID, nil, expense); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	invalidateAccountCache(ctx, uc.cache, input.AccountID)

	if uc.metrics != nil {
		uc.metrics.ExpensesCreated.Inc()
	}

	return expense, nil
}

// UpdateExpenseInput represents input for updating an expense.
type UpdateExpenseInput struct {
	UserID     string
	ExpenseID  string
	AccountID  string
	Amount     decimal.Decimal
	Category   string
	OccurredAt time.Time
}

// UpdateExpense mutates the expense and reconciles whichever account
// balances the change touches, in one transaction. The expense row is
// locked so concurrent edits of the same expense serialize.
func (uc *ExpenseUseCase) UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*domain.Expense, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var (
		expense      *domain.Expense
		oldAccountID string
	)

	err := uc.withRetry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		existing, err := uc.expenseRepo.GetByIDForUpdate(txCtx, tx, input.ExpenseID)
		if err != nil {
			return err
		}

		if existing.UserID != input.UserID {
			return domain.ErrNotOwner
		}

		oldEffect := existing.Effect()
		oldAccountID = existing.AccountID
		before := *existing

		existing.AccountID = input.AccountID
		existing.Amount = input.Amount
		existing.Category = input.Category
		if !input.OccurredAt.IsZero() {
			existing.OccurredAt = input.OccurredAt
		}
		existing.UpdatedAt = time.Now().UTC()

		if err := existing.Validate(); err != nil {
			return err
		}

		if err := uc.expenseRepo.Update(txCtx, tx, existing); err != nil {
			return err
		}

		if err := uc.balance.AdjustOnUpdate(txCtx, tx, input.UserID, oldEffect, existing.Effect()); err != nil {
			return err
		}

		if err := uc.audit(txCtx, tx, input.UserID, domain.AuditActionExpenseUpdate, existing.ID, &before, existing); err != nil {
			return err
		}

		expense = existing

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	invalidateAccountCache(ctx, uc.cache, oldAccountID, expense.AccountID)

	return expense, nil
}

// DeleteExpense reverses the balance effect and deletes the row atomically.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	var accountID string

	err := uc.withRetry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		expense, err := uc.expenseRepo.GetByIDForUpdate(txCtx, tx, expenseID)
		if err != nil {
			return err
		}

		if expense.UserID != userID {
			return domain.ErrNotOwner
		}

		accountID = expense.AccountID

		account, err := uc.balance.DeleteReversal(txCtx, tx, userID, expense.Effect())
		if err != nil {
			return err
		}

		if err := uc.expenseRepo.Delete(txCtx, tx, expenseID); err != nil {
			return err
		}

		if err := uc.emitEvent(txCtx, tx, domain.EventTypeExpenseDeleted, expense, account); err != nil {
			return err
		}

		if err := uc.audit(txCtx, tx, userID, domain.AuditActionExpenseDelete, expense.ID, expense, nil); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return err
	}

	invalidateAccountCache(ctx, uc.cache, accountID)

	return nil
}

// GetExpense retrieves an expense owned by the user.
func (uc *ExpenseUseCase) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	expense, err := uc.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	if expense.UserID != userID {
		return nil, domain.ErrNotOwner
	}

	return expense, nil
}

// ListExpensesInput represents input for listing expenses.
type ListExpensesInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListExpenses lists the user's expenses with pagination.
func (uc *ExpenseUseCase) ListExpenses(ctx context.Context, input ListExpensesInput) ([]*domain.Expense, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	return uc.expenseRepo.ListByUser(ctx, input.UserID, limit, offset)
}

func (uc *ExpenseUseCase) withRetry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}

	return uc.retrier.Retry(ctx, op)
}

func (uc *ExpenseUseCase) emitEvent(ctx context.Context, tx Transaction, eventType string, expense *domain.Expense, account *domain.Account) error {
	if uc.outboxRepo == nil {
		return nil
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   expense.ID,
		AggregateType: domain.AggregateTypeExpense,
		EventType:     eventType,
		Payload: map[string]any{
			"expense_id": expense.ID,
			"account_id": expense.AccountID,
			"amount":     expense.Amount.String(),
			"currency":   account.Currency,
			"category":   expense.Category,
		},
		CreatedAt: time.Now().UTC(),
		Published: false,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *ExpenseUseCase) audit(ctx context.Context, tx Transaction, userID string, action domain.AuditAction, resourceID string, before, after any) error {
	if uc.auditRepo == nil {
		return nil
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       userID,
		Action:       string(action),
		ResourceType: domain.AggregateTypeExpense,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now(),
	}

	return uc.auditRepo.CreateTx(ctx, tx, log)
}

// clampPage applies default and maximum page sizes.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
