package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/vkotov/finbook/internal/usecase"
	"github.com/vkotov/finbook/internal/usecase/mocks"
)

func TestIntegrityCheckAccountConsistent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountRepo := mocks.NewMockAccountRepository()
	_ = accountRepo.Create(context.Background(), testAccount("acc-1", "u1", "RUB", 900))

	integrityRepo := mocks.NewMockIntegrityRepository(ctrl)
	integrityRepo.EXPECT().CalculatedBalance(gomock.Any(), "acc-1").Return(decimal.NewFromInt(900), nil)

	uc := usecase.NewIntegrityUseCase(accountRepo, integrityRepo)

	result, err := uc.CheckAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Consistent {
		t.Error("expected consistent account")
	}

	if !result.Difference.IsZero() {
		t.Errorf("expected zero difference, got %s", result.Difference)
	}
}

func TestIntegrityCheckAccountDrift(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountRepo := mocks.NewMockAccountRepository()
	_ = accountRepo.Create(context.Background(), testAccount("acc-1", "u1", "RUB", 900))

	integrityRepo := mocks.NewMockIntegrityRepository(ctrl)
	integrityRepo.EXPECT().CalculatedBalance(gomock.Any(), "acc-1").Return(decimal.NewFromInt(850), nil)

	uc := usecase.NewIntegrityUseCase(accountRepo, integrityRepo)

	result, err := uc.CheckAccount(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Consistent {
		t.Error("expected drift to be detected")
	}

	if !result.Difference.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected difference 50, got %s", result.Difference)
	}
}

func TestIntegrityGenerateReport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	accountRepo := mocks.NewMockAccountRepository()
	_ = accountRepo.Create(ctx, testAccount("acc-good", "u1", "RUB", 100))
	_ = accountRepo.Create(ctx, testAccount("acc-bad", "u1", "RUB", 100))

	integrityRepo := mocks.NewMockIntegrityRepository(ctrl)
	integrityRepo.EXPECT().CalculatedBalance(gomock.Any(), "acc-good").Return(decimal.NewFromInt(100), nil)
	integrityRepo.EXPECT().CalculatedBalance(gomock.Any(), "acc-bad").Return(decimal.NewFromInt(75), nil)

	uc := usecase.NewIntegrityUseCase(accountRepo, integrityRepo)

	report, err := uc.GenerateReport(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalAccounts != 2 {
		t.Errorf("expected 2 accounts checked, got %d", report.TotalAccounts)
	}

	if report.ConsistentAccounts != 1 {
		t.Errorf("expected 1 consistent account, got %d", report.ConsistentAccounts)
	}

	if len(report.Drifted) != 1 || report.Drifted[0].AccountID != "acc-bad" {
		t.Errorf("expected acc-bad in drifted set, got %+v", report.Drifted)
	}
}
