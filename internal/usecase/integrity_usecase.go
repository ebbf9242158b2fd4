package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
)

// IntegrityUseCase verifies the core invariant: for every account, the
// cached balance equals the sum of signed effects of every expense, income
// and receipt currently persisted against it.
type IntegrityUseCase struct {
	accountRepo   AccountRepository
	integrityRepo IntegrityRepository
}

// NewIntegrityUseCase creates a new IntegrityUseCase.
func NewIntegrityUseCase(accountRepo AccountRepository, integrityRepo IntegrityRepository) *IntegrityUseCase {
	return &IntegrityUseCase{
		accountRepo:   accountRepo,
		integrityRepo: integrityRepo,
	}
}

// IntegrityResult represents the result of an integrity check on one account.
type IntegrityResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	Consistent        bool
	CheckedAt         time.Time
}

// CheckAccount recomputes one account's balance from its operations and
// compares it against the cached value.
func (uc *IntegrityUseCase) CheckAccount(ctx context.Context, accountID string) (*IntegrityResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	calculated, err := uc.integrityRepo.CalculatedBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}

	diff := account.Balance.Sub(calculated)

	return &IntegrityResult{
		AccountID:         accountID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        diff,
		Consistent:        diff.IsZero(),
		CheckedAt:         time.Now().UTC(),
	}, nil
}

// CheckUserAccounts checks every account of one user.
func (uc *IntegrityUseCase) CheckUserAccounts(ctx context.Context, userID string) ([]*IntegrityResult, error) {
	limit, offset := domain.ValidatePagination(10000, 0)

	accounts, err := uc.accountRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	results := make([]*IntegrityResult, 0, len(accounts))
	for _, account := range accounts {
		result, err := uc.CheckAccount(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check account %s: %w", account.ID, err)
		}

		results = append(results, result)
	}

	return results, nil
}

// IntegrityReport represents a full drift report for one user.
type IntegrityReport struct {
	TotalAccounts      int
	ConsistentAccounts int
	Drifted            []*IntegrityResult
	CheckedAt          time.Time
}

// GenerateReport builds a drift report over all of the user's accounts.
func (uc *IntegrityUseCase) GenerateReport(ctx context.Context, userID string) (*IntegrityReport, error) {
	results, err := uc.CheckUserAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := &IntegrityReport{
		TotalAccounts: len(results),
		Drifted:       make([]*IntegrityResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, result := range results {
		if result.Consistent {
			report.ConsistentAccounts++
		} else {
			report.Drifted = append(report.Drifted, result)
		}
	}

	return report, nil
}
