package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/usecase"
	"github.com/vkotov/finbook/internal/usecase/mocks"
)

func TestCreateAccountDefaults(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	uc := usecase.NewAccountUseCase(accountRepo, mocks.NewMockCache(), mocks.NewMockIDGenerator())

	account, err := uc.CreateAccount(context.Background(), usecase.CreateAccountInput{
		UserID:         "u1",
		Name:           "Daily card",
		Currency:       "RUB",
		OpeningBalance: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if account.Kind != domain.AccountKindDebit {
		t.Errorf("expected debit kind by default, got %s", account.Kind)
	}

	if !account.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected opening balance 500, got %s", account.Balance)
	}
}

func TestCreateAccountRejectsUnknownCurrency(t *testing.T) {
	uc := usecase.NewAccountUseCase(mocks.NewMockAccountRepository(), nil, mocks.NewMockIDGenerator())

	_, err := uc.CreateAccount(context.Background(), usecase.CreateAccountInput{
		UserID:   "u1",
		Name:     "Daily card",
		Currency: "XXX",
	})
	if err == nil {
		t.Fatal("expected currency validation error")
	}
}

func TestGetAccountScopedToOwner(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	ctx := context.Background()
	_ = accountRepo.Create(ctx, testAccount("acc-1", "owner", "RUB", 100))

	uc := usecase.NewAccountUseCase(accountRepo, nil, mocks.NewMockIDGenerator())

	if _, err := uc.GetAccount(ctx, "owner", "acc-1"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	if _, err := uc.GetAccount(ctx, "intruder", "acc-1"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound for foreign user, got %v", err)
	}
}

func TestGetAccountServesCachedCopy(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	cache := mocks.NewMockCache()
	ctx := context.Background()
	_ = accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 100))

	uc := usecase.NewAccountUseCase(accountRepo, cache, mocks.NewMockIDGenerator())

	// First read populates the cache.
	if _, err := uc.GetAccount(ctx, "u1", "acc-1"); err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}

	// Second read must not need the repository.
	accountRepo.GetByIDAndUserFunc = func(ctx context.Context, id, userID string) (*domain.Account, error) {
		t.Error("expected cached read, repository was hit")
		return nil, domain.ErrAccountNotFound
	}

	account, err := uc.GetAccount(ctx, "u1", "acc-1")
	if err != nil {
		t.Fatalf("cached lookup failed: %v", err)
	}

	if !account.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected cached balance 100, got %s", account.Balance)
	}
}

func TestDeleteAccountInUse(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	ctx := context.Background()
	_ = accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 100))

	accountRepo.DeleteFunc = func(ctx context.Context, id string) error {
		return domain.ErrAccountInUse
	}

	uc := usecase.NewAccountUseCase(accountRepo, nil, mocks.NewMockIDGenerator())

	if err := uc.DeleteAccount(ctx, "u1", "acc-1"); !errors.Is(err, domain.ErrAccountInUse) {
		t.Fatalf("expected ErrAccountInUse, got %v", err)
	}
}

func TestDeleteAccountDropsCache(t *testing.T) {
	accountRepo := mocks.NewMockAccountRepository()
	cache := mocks.NewMockCache()
	ctx := context.Background()
	_ = accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 100))

	uc := usecase.NewAccountUseCase(accountRepo, cache, mocks.NewMockIDGenerator())

	if _, err := uc.GetAccount(ctx, "u1", "acc-1"); err != nil {
		t.Fatalf("lookup failed: %v", err)
	}

	if err := uc.DeleteAccount(ctx, "u1", "acc-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if data, _ := cache.Get(ctx, "finbook:account:acc-1"); data != nil {
		t.Error("expected cache entry to be dropped")
	}
}
