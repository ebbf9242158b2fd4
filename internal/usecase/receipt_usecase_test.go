package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/usecase"
	"github.com/vkotov/finbook/internal/usecase/mocks"
)

type receiptFixture struct {
	uc          *usecase.ReceiptUseCase
	accountRepo *mocks.MockAccountRepository
	receiptRepo *mocks.MockReceiptRepository
	productRepo *mocks.MockProductRepository
	sellerRepo  *mocks.MockSellerRepository
	txManager   *mocks.MockTransactionManager
	cache       *mocks.MockCache
}

func newReceiptFixture() *receiptFixture {
	accountRepo := mocks.NewMockAccountRepository()
	receiptRepo := mocks.NewMockReceiptRepository()
	productRepo := mocks.NewMockProductRepository()
	sellerRepo := mocks.NewMockSellerRepository()
	txManager := mocks.NewMockTransactionManager()
	cache := mocks.NewMockCache()

	balance := usecase.NewBalanceUseCase(accountRepo, nil)

	uc := usecase.NewReceiptUseCase(
		txManager,
		receiptRepo,
		productRepo,
		sellerRepo,
		balance,
		cache,
		mocks.NewMockOutboxRepository(),
		mocks.NewMockAuditRepository(),
		mocks.NewMockIDGenerator(),
		mocks.NewMockRetrier(),
		nil,
	)

	return &receiptFixture{
		uc:          uc,
		accountRepo: accountRepo,
		receiptRepo: receiptRepo,
		productRepo: productRepo,
		sellerRepo:  sellerRepo,
		txManager:   txManager,
		cache:       cache,
	}
}

func receiptDate() time.Time {
	return time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)
}

func TestCreateReceiptPurchaseDebitsAccount(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	receipt, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:        "u1",
		AccountID:     "acc-1",
		OperationType: domain.OperationPurchase,
		ReceiptDate:   receiptDate(),
		TotalSum:      decimal.NewFromInt(300),
		Manual:        true,
		Seller:        usecase.SellerInput{Name: "Grocery Lane"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _ := f.accountRepo.GetByID(ctx, "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected balance 700, got %s", account.Balance)
	}

	if receipt.SellerID == "" {
		t.Error("expected receipt to be linked to a seller")
	}

	if !receipt.Manual {
		t.Error("expected manual flag to survive")
	}
}

func TestCreateReceiptSaleCreditsAccount(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	_, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:        "u1",
		AccountID:     "acc-1",
		OperationType: domain.OperationSale,
		ReceiptDate:   receiptDate(),
		TotalSum:      decimal.NewFromInt(200),
		Seller:        usecase.SellerInput{Name: "Buyer"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _ := f.accountRepo.GetByID(ctx, "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("expected balance 1200, got %s", account.Balance)
	}
}

func TestCreateReceiptDerivesTotalFromProducts(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	receipt, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
		Seller:      usecase.SellerInput{Name: "Shop"},
		Products: []usecase.ProductLineInput{
			{ProductName: "milk", Price: decimal.NewFromInt(50), Quantity: decimal.NewFromInt(2)},
			{ProductName: "bread", Price: decimal.NewFromInt(30), Quantity: decimal.NewFromInt(1)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !receipt.TotalSum.Equal(decimal.NewFromInt(130)) {
		t.Errorf("expected derived total 130, got %s", receipt.TotalSum)
	}

	account, _ := f.accountRepo.GetByID(ctx, "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(870)) {
		t.Errorf("expected balance 870, got %s", account.Balance)
	}
}

func TestCreateReceiptDuplicateDateAndTotal(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	input := usecase.CreateReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
		TotalSum:    decimal.NewFromInt(300),
		Seller:      usecase.SellerInput{Name: "Shop"},
	}

	if _, err := f.uc.CreateReceipt(ctx, input); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := f.uc.CreateReceipt(ctx, input)
	if !errors.Is(err, domain.ErrDuplicateReceipt) {
		t.Fatalf("expected ErrDuplicateReceipt, got %v", err)
	}

	// The duplicate attempt left the balance exactly as after the first.
	account, _ := f.accountRepo.GetByID(ctx, "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected balance 700, got %s", account.Balance)
	}
}

func TestImportReceiptRequiresProducts(t *testing.T) {
	f := newReceiptFixture()

	_, err := f.uc.ImportReceipt(context.Background(), usecase.ImportReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
	})
	if !errors.Is(err, domain.ErrNoProducts) {
		t.Fatalf("expected ErrNoProducts, got %v", err)
	}
}

func TestImportReceiptDuplicateNumber(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	input := usecase.ImportReceiptInput{
		UserID:        "u1",
		AccountID:     "acc-1",
		ReceiptDate:   receiptDate(),
		ReceiptNumber: "FN-0042",
		Seller:        usecase.SellerInput{Name: "Shop"},
		Products: []usecase.ProductLineInput{
			{ProductName: "milk", Price: decimal.NewFromInt(50), Quantity: decimal.NewFromInt(1)},
		},
	}

	if _, err := f.uc.ImportReceipt(ctx, input); err != nil {
		t.Fatalf("first import failed: %v", err)
	}

	// Same number, different date and total: still a duplicate.
	input.ReceiptDate = receiptDate().AddDate(0, 0, 1)
	input.Products[0].Quantity = decimal.NewFromInt(3)

	_, err := f.uc.ImportReceipt(ctx, input)
	if !errors.Is(err, domain.ErrDuplicateReceipt) {
		t.Fatalf("expected ErrDuplicateReceipt, got %v", err)
	}
}

func TestImportReceiptFallsBackToDateAndTotal(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	input := usecase.ImportReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
		Seller:      usecase.SellerInput{Name: "Shop"},
		Products: []usecase.ProductLineInput{
			{ProductName: "milk", Price: decimal.NewFromInt(50), Quantity: decimal.NewFromInt(1)},
		},
	}

	if _, err := f.uc.ImportReceipt(ctx, input); err != nil {
		t.Fatalf("first import failed: %v", err)
	}

	_, err := f.uc.ImportReceipt(ctx, input)
	if !errors.Is(err, domain.ErrDuplicateReceipt) {
		t.Fatalf("expected ErrDuplicateReceipt, got %v", err)
	}
}

func TestImportReceiptIgnoresSuppliedTotal(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	receipt, err := f.uc.ImportReceipt(ctx, usecase.ImportReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
		TotalSum:    decimal.NewFromInt(9999),
		Seller:      usecase.SellerInput{Name: "Shop"},
		Products: []usecase.ProductLineInput{
			{ProductName: "milk", Price: decimal.NewFromInt(50), Quantity: decimal.NewFromInt(2)},
		},
	})
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if !receipt.TotalSum.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected total derived from lines (100), got %s", receipt.TotalSum)
	}
}

func TestCreateReceiptAtomicOnProductFailure(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	boom := errors.New("insert failed")
	f.productRepo.CreateBatchFunc = func(ctx context.Context, tx usecase.Transaction, products []*domain.Product) error {
		return boom
	}

	_, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
		Seller:      usecase.SellerInput{Name: "Shop"},
		Products: []usecase.ProductLineInput{
			{ProductName: "milk", Price: decimal.NewFromInt(50), Quantity: decimal.NewFromInt(1)},
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected product insert failure, got %v", err)
	}

	txs := f.txManager.Transactions()
	if len(txs) != 1 || txs[0].Committed || !txs[0].RolledBack {
		t.Error("expected a single rolled back transaction")
	}
}

func TestDeleteReceiptReversesEffect(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	receipt, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
		TotalSum:    decimal.NewFromInt(300),
		Seller:      usecase.SellerInput{Name: "Shop"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := f.uc.DeleteReceipt(ctx, "u1", receipt.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	account, _ := f.accountRepo.GetByID(ctx, "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected balance restored to 1000, got %s", account.Balance)
	}
}

func TestDeleteReceiptSaleRefundReversal(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	// A sale refund debits at creation; deletion credits it back.
	receipt, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:        "u1",
		AccountID:     "acc-1",
		OperationType: domain.OperationSaleRefund,
		ReceiptDate:   receiptDate(),
		TotalSum:      decimal.NewFromInt(200),
		Seller:        usecase.SellerInput{Name: "Buyer"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	account, _ := f.accountRepo.GetByID(ctx, "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(800)) {
		t.Fatalf("expected balance 800 after sale refund, got %s", account.Balance)
	}

	if err := f.uc.DeleteReceipt(ctx, "u1", receipt.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	account, _ = f.accountRepo.GetByID(ctx, "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected balance restored to 1000, got %s", account.Balance)
	}
}

func TestUpdateReceiptReconcilesTotal(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	receipt, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
		Seller:      usecase.SellerInput{Name: "Shop"},
		Products: []usecase.ProductLineInput{
			{ProductName: "milk", Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(3)},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := f.uc.UpdateReceipt(ctx, usecase.UpdateReceiptInput{
		UserID:    "u1",
		ReceiptID: receipt.ID,
		Products: []usecase.ProductLineInput{
			{ProductName: "milk", Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(2)},
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if !updated.TotalSum.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected new total 200, got %s", updated.TotalSum)
	}

	account, _ := f.accountRepo.GetByID(ctx, "acc-1")
	if !account.Balance.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected balance 800, got %s", account.Balance)
	}
}

func TestUpdateReceiptMovesAccounts(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-x", "u1", "RUB", 1000))
	_ = f.accountRepo.Create(ctx, testAccount("acc-y", "u1", "RUB", 500))

	receipt, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-x",
		ReceiptDate: receiptDate(),
		Seller:      usecase.SellerInput{Name: "Shop"},
		Products: []usecase.ProductLineInput{
			{ProductName: "widget", Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(1)},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = f.uc.UpdateReceipt(ctx, usecase.UpdateReceiptInput{
		UserID:    "u1",
		ReceiptID: receipt.ID,
		AccountID: "acc-y",
		Products: []usecase.ProductLineInput{
			{ProductName: "widget", Price: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(1)},
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	x, _ := f.accountRepo.GetByID(ctx, "acc-x")
	y, _ := f.accountRepo.GetByID(ctx, "acc-y")

	if !x.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected X restored to 1000, got %s", x.Balance)
	}
	if !y.Balance.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected Y debited to 400, got %s", y.Balance)
	}
}

func TestGetReceiptLoadsProducts(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	receipt, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
		Seller:      usecase.SellerInput{Name: "Shop"},
		Products: []usecase.ProductLineInput{
			{ProductName: "milk", Price: decimal.NewFromInt(50), Quantity: decimal.NewFromInt(2)},
			{ProductName: "bread", Price: decimal.NewFromInt(30), Quantity: decimal.NewFromInt(1)},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := f.uc.GetReceipt(ctx, "u1", receipt.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if len(got.Products) != 2 {
		t.Errorf("expected 2 products, got %d", len(got.Products))
	}
}

func TestReceiptSellerReuseByName(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 10000))

	first, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
		TotalSum:    decimal.NewFromInt(100),
		Seller:      usecase.SellerInput{Name: "Shop", Address: "Old St 1"},
	})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate().AddDate(0, 0, 1),
		TotalSum:    decimal.NewFromInt(250),
		Seller:      usecase.SellerInput{Name: "Shop", Address: "New St 2"},
	})
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if first.SellerID != second.SellerID {
		t.Errorf("expected both receipts to share the seller, got %s and %s", first.SellerID, second.SellerID)
	}

	seller, err := f.sellerRepo.GetByID(ctx, first.SellerID)
	if err != nil {
		t.Fatalf("seller lookup failed: %v", err)
	}

	if seller.Address != "New St 2" {
		t.Errorf("expected refreshed address, got %s", seller.Address)
	}
}

func TestReceiptLifecycleDropsAccountCache(t *testing.T) {
	f := newReceiptFixture()
	ctx := context.Background()
	_ = f.accountRepo.Create(ctx, testAccount("acc-1", "u1", "RUB", 1000))

	var dropped []string
	f.cache.DeleteFunc = func(ctx context.Context, key string) error {
		dropped = append(dropped, key)
		return nil
	}

	receipt, err := f.uc.CreateReceipt(ctx, usecase.CreateReceiptInput{
		UserID:      "u1",
		AccountID:   "acc-1",
		ReceiptDate: receiptDate(),
		TotalSum:    decimal.NewFromInt(300),
		Manual:      true,
		Seller:      usecase.SellerInput{Name: "Grocery Lane"},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if len(dropped) != 1 || dropped[0] != "finbook:account:acc-1" {
		t.Fatalf("expected cache drop after create, got %v", dropped)
	}

	dropped = nil
	if err := f.uc.DeleteReceipt(ctx, "u1", receipt.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if len(dropped) != 1 || dropped[0] != "finbook:account:acc-1" {
		t.Fatalf("expected cache drop after delete, got %v", dropped)
	}
}
