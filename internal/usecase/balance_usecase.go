package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/infrastructure/metrics"
)

// BalanceUseCase is the balance reconciliation engine. It is the only code
// path that writes Account.Balance: every create, update and delete of a
// balance-affecting operation routes its effect through here, inside the
// caller's transaction, with the account row locked FOR UPDATE.
type BalanceUseCase struct {
	accountRepo AccountRepository
	metrics     *metrics.Metrics
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(accountRepo AccountRepository, m *metrics.Metrics) *BalanceUseCase {
	return &BalanceUseCase{
		accountRepo: accountRepo,
		metrics:     m,
	}
}

// Apply locks the account row, verifies ownership, applies the effect and
// persists the new balance. The account is re-fetched under the lock so the
// delta is always computed against a fresh row.
func (uc *BalanceUseCase) Apply(ctx context.Context, tx Transaction, userID string, effect domain.BalanceEffect) (*domain.Account, error) {
	if err := effect.Validate(); err != nil {
		return nil, err
	}

	account, err := uc.lockAccount(ctx, tx, userID, effect.AccountID)
	if err != nil {
		return nil, err
	}

	newBalance := effect.ApplyTo(account)
	if err := uc.writeBalance(ctx, tx, account, newBalance); err != nil {
		return nil, err
	}

	return account, nil
}

// ApplySpend decreases the account balance by amount. Used when a new
// expense, purchase receipt or sale refund is created. No lower bound is
// enforced, balances may go negative.
func (uc *BalanceUseCase) ApplySpend(ctx context.Context, tx Transaction, userID, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	return uc.Apply(ctx, tx, userID, domain.BalanceEffect{
		Kind:      domain.EffectDebit,
		AccountID: accountID,
		Amount:    amount,
	})
}

// ApplyRefund increases the account balance by amount. Used when an income,
// receipt refund or deletion reverses an earlier spend.
func (uc *BalanceUseCase) ApplyRefund(ctx context.Context, tx Transaction, userID, accountID string, amount decimal.Decimal) (*domain.Account, error) {
	return uc.Apply(ctx, tx, userID, domain.BalanceEffect{
		Kind:      domain.EffectCredit,
		AccountID: accountID,
		Amount:    amount,
	})
}

// DeleteReversal undoes the effect a persisted operation applied at creation
// time. Invoked atomically with the entity delete.
func (uc *BalanceUseCase) DeleteReversal(ctx context.Context, tx Transaction, userID string, effect domain.BalanceEffect) (*domain.Account, error) {
	return uc.Apply(ctx, tx, userID, effect.Inverse())
}

// AdjustOnUpdate reconciles balances after an operation changed. Four cases:
// nothing changed (no-op), same account with a new amount (one net write),
// and a moved operation (reverse on the old account, apply on the new one,
// two writes under sorted locks).
func (uc *BalanceUseCase) AdjustOnUpdate(ctx context.Context, tx Transaction, userID string, oldEffect, newEffect domain.BalanceEffect) error {
	if err := oldEffect.Validate(); err != nil {
		return err
	}

	if err := newEffect.Validate(); err != nil {
		return err
	}

	if oldEffect.AccountID == newEffect.AccountID {
		if oldEffect.Kind == newEffect.Kind && oldEffect.Amount.Equal(newEffect.Amount) {
			return nil
		}

		return uc.adjustSameAccount(ctx, tx, userID, oldEffect, newEffect)
	}

	return uc.adjustAcrossAccounts(ctx, tx, userID, oldEffect, newEffect)
}

// ReconcileAccountBalances is the receipt-update entry point: it rebuilds the
// effects from the old and new totals and delegates to AdjustOnUpdate. The
// common case (same account, changed total) does a single write.
func (uc *BalanceUseCase) ReconcileAccountBalances(ctx context.Context, tx Transaction, userID, oldAccountID, newAccountID string, oldTotal, newTotal decimal.Decimal, kind domain.EffectKind) error {
	oldEffect := domain.BalanceEffect{Kind: kind, AccountID: oldAccountID, Amount: oldTotal}
	newEffect := domain.BalanceEffect{Kind: kind, AccountID: newAccountID, Amount: newTotal}

	return uc.AdjustOnUpdate(ctx, tx, userID, oldEffect, newEffect)
}

// adjustSameAccount reverses the old effect and applies the new one as a
// single arithmetic step against one locked row.
func (uc *BalanceUseCase) adjustSameAccount(ctx context.Context, tx Transaction, userID string, oldEffect, newEffect domain.BalanceEffect) error {
	account, err := uc.lockAccount(ctx, tx, userID, oldEffect.AccountID)
	if err != nil {
		return err
	}

	scratch := *account
	scratch.Balance = oldEffect.Inverse().ApplyTo(&scratch)
	newBalance := newEffect.ApplyTo(&scratch)

	return uc.writeBalance(ctx, tx, account, newBalance)
}

// adjustAcrossAccounts fully reverses the old effect on the old account and
// fully applies the new effect on the new account. Both rows are locked in
// sorted ID order to prevent lock-order deadlocks between concurrent movers.
func (uc *BalanceUseCase) adjustAcrossAccounts(ctx context.Context, tx Transaction, userID string, oldEffect, newEffect domain.BalanceEffect) error {
	ids := []string{oldEffect.AccountID, newEffect.AccountID}
	sort.Strings(ids)

	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return err
	}

	if len(accounts) != len(ids) {
		return domain.ErrAccountNotFound
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		if !a.OwnedBy(userID) {
			return domain.ErrNotOwner
		}

		byID[a.ID] = a
	}

	oldAccount := byID[oldEffect.AccountID]
	newAccount := byID[newEffect.AccountID]

	// The engine never converts currencies, so an operation cannot move
	// between accounts denominated differently.
	if oldAccount.Currency != newAccount.Currency {
		return domain.ErrCurrencyMismatch
	}

	if err := uc.writeBalance(ctx, tx, oldAccount, oldEffect.Inverse().ApplyTo(oldAccount)); err != nil {
		return err
	}

	return uc.writeBalance(ctx, tx, newAccount, newEffect.ApplyTo(newAccount))
}

func (uc *BalanceUseCase) lockAccount(ctx context.Context, tx Transaction, userID, accountID string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(userID) {
		return nil, domain.ErrNotOwner
	}

	return account, nil
}

func (uc *BalanceUseCase) writeBalance(ctx context.Context, tx Transaction, account *domain.Account, newBalance decimal.Decimal) error {
	now := time.Now().UTC()

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return err
	}

	account.Balance = newBalance
	account.Version++
	account.UpdatedAt = now

	if uc.metrics != nil {
		uc.metrics.AccountBalance.WithLabelValues(account.ID, account.Currency).Set(newBalance.InexactFloat64())
		uc.metrics.BalanceWrites.Inc()
	}

	return nil
}
