package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
)

// AccountUseCase handles account business logic. It never touches
// Account.Balance beyond the opening balance at creation, all later
// mutations belong to the reconciliation engine.
type AccountUseCase struct {
	accountRepo AccountRepository
	cache       Cache
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, cache Cache, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		cache:       cache,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	UserID         string
	Name           string
	Currency       string
	Kind           domain.AccountKind
	Bank           string
	OpeningBalance decimal.Decimal
}

// CreateAccount creates a new account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	kind := input.Kind
	if kind == "" {
		kind = domain.AccountKindDebit
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		UserID:    input.UserID,
		Name:      input.Name,
		Currency:  input.Currency,
		Balance:   input.OpeningBalance,
		Kind:      kind,
		Bank:      input.Bank,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account owned by the user, serving a short-lived
// cached copy when available.
func (uc *AccountUseCase) GetAccount(ctx context.Context, userID, accountID string) (*domain.Account, error) {
	if uc.cache != nil {
		if data, err := uc.cache.Get(ctx, accountCacheKey(accountID)); err == nil && data != nil {
			var account domain.Account
			if json.Unmarshal(data, &account) == nil {
				if !account.OwnedBy(userID) {
					return nil, domain.ErrNotOwner
				}

				return &account, nil
			}
		}
	}

	account, err := uc.accountRepo.GetByIDAndUser(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	if account == nil {
		return nil, domain.ErrAccountNotFound
	}

	if uc.cache != nil {
		if data, err := json.Marshal(account); err == nil {
			_ = uc.cache.Set(ctx, accountCacheKey(accountID), data, accountCacheTTL)
		}
	}

	return account, nil
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListAccounts lists the user's accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	return uc.accountRepo.ListByUser(ctx, input.UserID, limit, offset)
}

// DeleteAccount deletes an account. Accounts referenced by existing
// operations are protected, the repository surfaces ErrAccountInUse and
// nothing is changed.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, userID, accountID string) error {
	account, err := uc.accountRepo.GetByIDAndUser(ctx, accountID, userID)
	if err != nil {
		return err
	}

	if account == nil {
		return domain.ErrAccountNotFound
	}

	if err := uc.accountRepo.Delete(ctx, accountID); err != nil {
		return err
	}

	invalidateAccountCache(ctx, uc.cache, accountID)

	return nil
}

const accountCacheTTL = 30 * time.Second

func accountCacheKey(accountID string) string {
	return "finbook:account:" + accountID
}

// invalidateAccountCache drops the cached copies of the given accounts.
// Write paths call it after commit; a failed delete only means the stale
// copy lives out its TTL.
func invalidateAccountCache(ctx context.Context, cache Cache, accountIDs ...string) {
	if cache == nil {
		return
	}

	for _, id := range accountIDs {
		if id == "" {
			continue
		}

		_ = cache.Delete(ctx, accountCacheKey(id))
	}
}
