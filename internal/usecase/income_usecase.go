package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/infrastructure/metrics"
)

// IncomeUseCase handles income workflows. Same transaction shape as
// expenses, with the effect direction flipped.
type IncomeUseCase struct {
	txManager  TransactionManager
	incomeRepo IncomeRepository
	balance    *BalanceUseCase
	cache      Cache
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	retrier    Retrier
	metrics    *metrics.Metrics
}

// NewIncomeUseCase creates a new IncomeUseCase.
func NewIncomeUseCase(
	txManager TransactionManager,
	incomeRepo IncomeRepository,
	balance *BalanceUseCase,
	cache Cache,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
) *IncomeUseCase {
	return &IncomeUseCase{
		txManager:  txManager,
		incomeRepo: incomeRepo,
		balance:    balance,
		cache:      cache,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		retrier:    retrier,
		metrics:    m,
	}
}

// CreateIncomeInput represents input for creating an income.
type CreateIncomeInput struct {
	UserID     string
	AccountID  string
	Amount     decimal.Decimal
	Category   string
	OccurredAt time.Time
}

// CreateIncome persists the income and credits the account atomically.
func (uc *IncomeUseCase) CreateIncome(ctx context.Context, input CreateIncomeInput) (*domain.Income, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var income *domain.Income

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

		income = &domain.Income{
			ID:         uc.idGen.Generate(),
			UserID:     input.UserID,
			AccountID:  input.AccountID,
			Amount:     input.Amount,
			Category:   input.Category,
			OccurredAt: occurredAt,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := income.Validate(); err != nil {
			return err
		}

		if err := uc.incomeRepo.Create(txCtx, tx, income); err != nil {
			return err
		}

		account, err := uc.balance.ApplyRefund(txCtx, tx, input.UserID, input.AccountID, input.Amount)
		if err != nil {
			return err
		}

		if err := uc.emitEvent(txCtx, tx, domain.EventTypeIncomeCreated, income, account); err != nil {
			return err
		}

		if err := uc.audit(txCtx, tx, input.UserID, domain.AuditActionIncomeCreate, income.ID, nil, income); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	invalidateAccountCache(ctx, uc.cache, input.AccountID)

	if uc.metrics != nil {
		uc.metrics.IncomesCreated.Inc()
	}

	return income, nil
}

// UpdateIncomeInput represents input for updating an income.
type UpdateIncomeInput struct {
	UserID     string
	IncomeID   string
	AccountID  string
	Amount     decimal.Decimal
	Category   string
	OccurredAt time.Time
}

// UpdateIncome mutates the income and reconciles the affected balances.
func (uc *IncomeUseCase) UpdateIncome(ctx context.Context, input UpdateIncomeInput) (*domain.Income, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	var (
		income       *domain.Income
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

		existing, err := uc.incomeRepo.GetByIDForUpdate(txCtx, tx, input.IncomeID)
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

		if err := uc.incomeRepo.Update(txCtx, tx, existing); err != nil {
			return err
		}

		if err := uc.balance.AdjustOnUpdate(txCtx, tx, input.UserID, oldEffect, existing.Effect()); err != nil {
			return err
		}

		if err := uc.audit(txCtx, tx, input.UserID, domain.AuditActionIncomeUpdate, existing.ID, &before, existing); err != nil {
			return err
		}

		income = existing

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	invalidateAccountCache(ctx, uc.cache, oldAccountID, income.AccountID)

	return income, nil
}

// DeleteIncome reverses the credit and deletes the row atomically.
func (uc *IncomeUseCase) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	var accountID string

	err := uc.withRetry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		income, err := uc.incomeRepo.GetByIDForUpdate(txCtx, tx, incomeID)
		if err != nil {
			return err
		}

		if income.UserID != userID {
			return domain.ErrNotOwner
		}

		accountID = income.AccountID

		account, err := uc.balance.DeleteReversal(txCtx, tx, userID, income.Effect())
		if err != nil {
			return err
		}

		if err := uc.incomeRepo.Delete(txCtx, tx, incomeID); err != nil {
			return err
		}

		if err := uc.emitEvent(txCtx, tx, domain.EventTypeIncomeDeleted, income, account); err != nil {
			return err
		}

		if err := uc.audit(txCtx, tx, userID, domain.AuditActionIncomeDelete, income.ID, income, nil); err != nil {
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

// GetIncome retrieves an income owned by the user.
func (uc *IncomeUseCase) GetIncome(ctx context.Context, userID, incomeID string) (*domain.Income, error) {
	income, err := uc.incomeRepo.GetByID(ctx, incomeID)
	if err != nil {
		return nil, err
	}

	if income.UserID != userID {
		return nil, domain.ErrNotOwner
	}

	return income, nil
}

// ListIncomesInput represents input for listing incomes.
type ListIncomesInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListIncomes lists the user's incomes with pagination.
func (uc *IncomeUseCase) ListIncomes(ctx context.Context, input ListIncomesInput) ([]*domain.Income, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	return uc.incomeRepo.ListByUser(ctx, input.UserID, limit, offset)
}

func (uc *IncomeUseCase) withRetry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}

	return uc.retrier.Retry(ctx, op)
}

func (uc *IncomeUseCase) emitEvent(ctx context.Context, tx Transaction, eventType string, income *domain.Income, account *domain.Account) error {
	if uc.outboxRepo == nil {
		return nil
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   income.ID,
		AggregateType: domain.AggregateTypeIncome,
		EventType:     eventType,
		Payload: map[string]any{
			"income_id":  income.ID,
			"account_id": income.AccountID,
			"amount":     income.Amount.String(),
			"currency":   account.Currency,
			"category":   income.Category,
		},
		CreatedAt: time.Now().UTC(),
		Published: false,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *IncomeUseCase) audit(ctx context.Context, tx Transaction, userID string, action domain.AuditAction, resourceID string, before, after any) error {
	if uc.auditRepo == nil {
		return nil
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       userID,
		Action:       string(action),
		ResourceType: domain.AggregateTypeIncome,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now(),
	}

	return uc.auditRepo.CreateTx(ctx, tx, log)
}
