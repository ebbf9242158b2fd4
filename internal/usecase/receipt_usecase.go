package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/infrastructure/metrics"
)

// ReceiptUseCase handles the receipt aggregate: the receipt row, its product
// lines and the seller are created, updated and deleted together in one
// transaction, with exactly one balance effect per change.
type ReceiptUseCase struct {
	txManager   TransactionManager
	receiptRepo ReceiptRepository
	productRepo ProductRepository
	sellerRepo  SellerRepository
	balance     *BalanceUseCase
	cache       Cache
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewReceiptUseCase creates a new ReceiptUseCase.
func NewReceiptUseCase(
	txManager TransactionManager,
	receiptRepo ReceiptRepository,
	productRepo ProductRepository,
	sellerRepo SellerRepository,
	balance *BalanceUseCase,
	cache Cache,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	retrier Retrier,
	m *metrics.Metrics,
) *ReceiptUseCase {
	return &ReceiptUseCase{
		txManager:   txManager,
		receiptRepo: receiptRepo,
		productRepo: productRepo,
		sellerRepo:  sellerRepo,
		balance:     balance,
		cache:       cache,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		retrier:     retrier,
		metrics:     m,
	}
}

// ProductLineInput is one line item of a receipt.
type ProductLineInput struct {
	ProductName string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	Amount      decimal.Decimal
	NDSType     int
	NDSSum      decimal.Decimal
}

// SellerInput identifies the seller; resolved update-or-create by
// (user, name).
type SellerInput struct {
	Name        string
	Address     string
	RetailPlace string
}

// CreateReceiptInput represents input for the manual/API creation path.
// TotalSum is trusted when supplied; a zero total is derived from the
// product lines.
type CreateReceiptInput struct {
	UserID        string
	AccountID     string
	OperationType domain.OperationType
	ReceiptDate   time.Time
	ReceiptNumber string
	TotalSum      decimal.Decimal
	NDS10         decimal.Decimal
	NDS20         decimal.Decimal
	Manual        bool
	Seller        SellerInput
	Products      []ProductLineInput
}

// CreateReceipt creates a receipt through the manual entry path.
// Duplicate key: (user, receipt_date, total_sum).
func (uc *ReceiptUseCase) CreateReceipt(ctx context.Context, input CreateReceiptInput) (*domain.Receipt, error) {
	total := input.TotalSum
	if total.IsZero() {
		total = sumProductLines(input.Products)
	}

	return uc.create(ctx, input, total, uc.manualDuplicateCheck)
}

// ImportReceiptInput represents input for the import path (background
// worker consuming recognized receipt payloads).
type ImportReceiptInput = CreateReceiptInput

// ImportReceipt creates a receipt through the import path. The total is
// always derived from the product lines. Duplicate key:
// (user, receipt_number), falling back to (user, receipt_date, total_sum)
// when the payload carries no number.
func (uc *ReceiptUseCase) ImportReceipt(ctx context.Context, input ImportReceiptInput) (*domain.Receipt, error) {
	if len(input.Products) == 0 {
		return nil, domain.ErrNoProducts
	}

	input.Manual = false
	total := sumProductLines(input.Products)

	return uc.create(ctx, input, total, uc.importDuplicateCheck)
}

type duplicateCheck func(ctx context.Context, tx Transaction, input CreateReceiptInput, total decimal.Decimal) error

func (uc *ReceiptUseCase) create(ctx context.Context, input CreateReceiptInput, total decimal.Decimal, checkDuplicate duplicateCheck) (*domain.Receipt, error) {
	if input.AccountID == "" {
		return nil, domain.ErrMissingAccount
	}

	if total.IsZero() {
		return nil, domain.ErrMissingTotal
	}

	if err := domain.ValidateAmount(total); err != nil {
		return nil, err
	}

	opType := input.OperationType
	if opType == "" {
		opType = domain.OperationPurchase
	}

	var receipt *domain.Receipt

	err := uc.withRetry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		// Duplicate detection runs before any balance mutation so a
		// rejected attempt leaves every balance untouched.
		if err := checkDuplicate(txCtx, tx, input, total); err != nil {
			return err
		}

		seller, err := uc.resolveSeller(txCtx, tx, input.UserID, input.Seller)
		if err != nil {
			return err
		}

		now := time.Now().UTC()

		receipt = &domain.Receipt{
			ID:            uc.idGen.Generate(),
			UserID:        input.UserID,
			AccountID:     input.AccountID,
			SellerID:      seller.ID,
			TotalSum:      total,
			OperationType: opType,
			ReceiptDate:   input.ReceiptDate,
			ReceiptNumber: input.ReceiptNumber,
			NDS10:         input.NDS10,
			NDS20:         input.NDS20,
			Manual:        input.Manual,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := receipt.Validate(); err != nil {
			return err
		}

		account, err := uc.balance.Apply(txCtx, tx, input.UserID, receipt.Effect())
		if err != nil {
			return err
		}

		if err := uc.receiptRepo.Create(txCtx, tx, receipt); err != nil {
			return err
		}

		receipt.Products = uc.buildProducts(receipt.ID, input.Products, now)
		if len(receipt.Products) > 0 {
			if err := uc.productRepo.CreateBatch(txCtx, tx, receipt.Products); err != nil {
				return err
			}
		}

		if err := uc.emitEvent(txCtx, tx, domain.EventTypeReceiptCreated, receipt, account); err != nil {
			return err
		}

		if err := uc.audit(txCtx, tx, input.UserID, domain.AuditActionReceiptCreate, receipt.ID, nil, receipt); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	invalidateAccountCache(ctx, uc.cache, input.AccountID)

	if uc.metrics != nil {
		uc.metrics.ReceiptsCreated.Inc()
	}

	return receipt, nil
}

func (uc *ReceiptUseCase) manualDuplicateCheck(ctx context.Context, tx Transaction, input CreateReceiptInput, total decimal.Decimal) error {
	exists, err := uc.receiptRepo.ExistsByDateAndTotal(ctx, tx, input.UserID, input.ReceiptDate, total)
	if err != nil {
		return err
	}

	if exists {
		return domain.ErrDuplicateReceipt
	}

	return nil
}

func (uc *ReceiptUseCase) importDuplicateCheck(ctx context.Context, tx Transaction, input CreateReceiptInput, total decimal.Decimal) error {
	if input.ReceiptNumber == "" {
		return uc.manualDuplicateCheck(ctx, tx, input, total)
	}

	exists, err := uc.receiptRepo.ExistsByNumber(ctx, tx, input.UserID, input.ReceiptNumber)
	if err != nil {
		return err
	}

	if exists {
		return domain.ErrDuplicateReceipt
	}

	return nil
}

// UpdateReceiptInput represents input for updating a receipt. The product
// set is replaced wholesale and the new total is the sum of the new lines.
// The operation type is not editable.
type UpdateReceiptInput struct {
	UserID        string
	ReceiptID     string
	AccountID     string
	ReceiptDate   time.Time
	ReceiptNumber string
	NDS10         decimal.Decimal
	NDS20         decimal.Decimal
	Seller        *SellerInput
	Products      []ProductLineInput
}

// UpdateReceipt replaces the product set, persists the updated receipt and
// reconciles the affected account balances, all in one transaction.
func (uc *ReceiptUseCase) UpdateReceipt(ctx context.Context, input UpdateReceiptInput) (*domain.Receipt, error) {
	if len(input.Products) == 0 {
		return nil, domain.ErrNoProducts
	}

	var (
		receipt      *domain.Receipt
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

		existing, err := uc.receiptRepo.GetByIDForUpdate(txCtx, tx, input.ReceiptID)
		if err != nil {
			return err
		}

		if existing.UserID != input.UserID {
			return domain.ErrNotOwner
		}

		// Capture the old effect before any mutation.
		oldAccountID = existing.AccountID
		oldTotal := existing.TotalSum
		before := *existing

		now := time.Now().UTC()

		// Old products are detached and deleted, new rows created fresh.
		if err := uc.productRepo.DeleteByReceipt(txCtx, tx, existing.ID); err != nil {
			return err
		}

		newProducts := uc.buildProducts(existing.ID, input.Products, now)
		newTotal := decimal.Zero
		for _, p := range newProducts {
			newTotal = newTotal.Add(p.Amount)
		}

		if err := domain.ValidateAmount(newTotal); err != nil {
			return err
		}

		if input.Seller != nil {
			seller, err := uc.resolveSeller(txCtx, tx, input.UserID, *input.Seller)
			if err != nil {
				return err
			}

			existing.SellerID = seller.ID
		}

		if input.AccountID != "" {
			existing.AccountID = input.AccountID
		}
		if !input.ReceiptDate.IsZero() {
			existing.ReceiptDate = input.ReceiptDate
		}
		if input.ReceiptNumber != "" {
			existing.ReceiptNumber = input.ReceiptNumber
		}
		existing.NDS10 = input.NDS10
		existing.NDS20 = input.NDS20
		existing.TotalSum = newTotal
		existing.UpdatedAt = now

		if err := existing.Validate(); err != nil {
			return err
		}

		if err := uc.receiptRepo.Update(txCtx, tx, existing); err != nil {
			return err
		}

		if err := uc.productRepo.CreateBatch(txCtx, tx, newProducts); err != nil {
			return err
		}

		if err := uc.balance.ReconcileAccountBalances(
			txCtx, tx, input.UserID,
			oldAccountID, existing.AccountID,
			oldTotal, newTotal,
			existing.OperationType.EffectKind(),
		); err != nil {
			return err
		}

		if err := uc.audit(txCtx, tx, input.UserID, domain.AuditActionReceiptUpdate, existing.ID, &before, existing); err != nil {
			return err
		}

		existing.Products = newProducts
		receipt = existing

		return tx.Commit(txCtx)
	})
	if err != nil {
		return nil, err
	}

	invalidateAccountCache(ctx, uc.cache, oldAccountID, receipt.AccountID)

	return receipt, nil
}

// DeleteReceipt reverses the balance effect, deletes the product lines and
// the receipt row atomically. A referential-integrity failure aborts the
// whole transaction, balance included.
func (uc *ReceiptUseCase) DeleteReceipt(ctx context.Context, userID, receiptID string) error {
	var accountID string

	err := uc.withRetry(ctx, func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := uc.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		receipt, err := uc.receiptRepo.GetByIDForUpdate(txCtx, tx, receiptID)
		if err != nil {
			return err
		}

		if receipt.UserID != userID {
			return domain.ErrNotOwner
		}

		accountID = receipt.AccountID

		account, err := uc.balance.DeleteReversal(txCtx, tx, userID, receipt.Effect())
		if err != nil {
			return err
		}

		if err := uc.productRepo.DeleteByReceipt(txCtx, tx, receipt.ID); err != nil {
			return err
		}

		if err := uc.receiptRepo.Delete(txCtx, tx, receipt.ID); err != nil {
			return err
		}

		if err := uc.emitEvent(txCtx, tx, domain.EventTypeReceiptDeleted, receipt, account); err != nil {
			return err
		}

		if err := uc.audit(txCtx, tx, userID, domain.AuditActionReceiptDelete, receipt.ID, receipt, nil); err != nil {
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

// GetReceipt retrieves a receipt with its product lines.
func (uc *ReceiptUseCase) GetReceipt(ctx context.Context, userID, receiptID string) (*domain.Receipt, error) {
	receipt, err := uc.receiptRepo.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	if receipt.UserID != userID {
		return nil, domain.ErrNotOwner
	}

	products, err := uc.productRepo.ListByReceipt(ctx, receipt.ID)
	if err != nil {
		return nil, err
	}

	receipt.Products = products

	return receipt, nil
}

// ListReceiptsInput represents input for listing receipts.
type ListReceiptsInput struct {
	UserID string
	Limit  int
	Offset int
}

// ListReceipts lists the user's receipts with pagination.
func (uc *ReceiptUseCase) ListReceipts(ctx context.Context, input ListReceiptsInput) ([]*domain.Receipt, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	return uc.receiptRepo.ListByUser(ctx, input.UserID, limit, offset)
}

func (uc *ReceiptUseCase) resolveSeller(ctx context.Context, tx Transaction, userID string, input SellerInput) (*domain.Seller, error) {
	now := time.Now().UTC()

	return uc.sellerRepo.Upsert(ctx, tx, &domain.Seller{
		ID:          uc.idGen.Generate(),
		UserID:      userID,
		Name:        input.Name,
		Address:     input.Address,
		RetailPlace: input.RetailPlace,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (uc *ReceiptUseCase) buildProducts(receiptID string, lines []ProductLineInput, now time.Time) []*domain.Product {
	products := make([]*domain.Product, 0, len(lines))
	for _, line := range lines {
		amount := line.Amount
		if amount.IsZero() {
			amount = line.Price.Mul(line.Quantity)
		}

		products = append(products, &domain.Product{
			ID:          uc.idGen.Generate(),
			ReceiptID:   receiptID,
			ProductName: line.ProductName,
			Price:       line.Price,
			Quantity:    line.Quantity,
			Amount:      amount,
			NDSType:     line.NDSType,
			NDSSum:      line.NDSSum,
			CreatedAt:   now,
		})
	}

	return products
}

func sumProductLines(lines []ProductLineInput) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		amount := line.Amount
		if amount.IsZero() {
			amount = line.Price.Mul(line.Quantity)
		}

		total = total.Add(amount)
	}

	return total
}

func (uc *ReceiptUseCase) withRetry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}

	return uc.retrier.Retry(ctx, op)
}

func (uc *ReceiptUseCase) emitEvent(ctx context.Context, tx Transaction, eventType string, receipt *domain.Receipt, account *domain.Account) error {
	if uc.outboxRepo == nil {
		return nil
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   receipt.ID,
		AggregateType: domain.AggregateTypeReceipt,
		EventType:     eventType,
		Payload: map[string]any{
			"receipt_id":     receipt.ID,
			"account_id":     receipt.AccountID,
			"seller_id":      receipt.SellerID,
			"total_sum":      receipt.TotalSum.String(),
			"currency":       account.Currency,
			"operation_type": string(receipt.OperationType),
			"receipt_date":   receipt.ReceiptDate.Format(time.RFC3339),
		},
		CreatedAt: time.Now().UTC(),
		Published: false,
	}

	return uc.outboxRepo.Create(ctx, tx, event)
}

func (uc *ReceiptUseCase) audit(ctx context.Context, tx Transaction, userID string, action domain.AuditAction, resourceID string, before, after any) error {
	if uc.auditRepo == nil {
		return nil
	}

	log := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       userID,
		Action:       string(action),
		ResourceType: domain.AggregateTypeReceipt,
		ResourceID:   resourceID,
		BeforeState:  domain.MarshalState(before),
		AfterState:   domain.MarshalState(after),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now(),
	}

	return uc.auditRepo.CreateTx(ctx, tx, log)
}
