package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/usecase"
)

// ReceiptRepository implements usecase.ReceiptRepository.
type ReceiptRepository struct {
	pool *pgxpool.Pool
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(pool *pgxpool.Pool) *ReceiptRepository {
	return &ReceiptRepository{pool: pool}
}

const receiptColumns = `id, user_id, account_id, seller_id, total_sum, operation_type, receipt_date, receipt_number, nds10, nds20, manual, created_at, updated_at`

// Create inserts a receipt inside the given transaction.
func (r *ReceiptRepository) Create(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error {
	_, err := pgxTxFrom(tx).Exec(ctx, `
		INSERT INTO receipts (id, user_id, account_id, seller_id, total_sum, operation_type, receipt_date, receipt_number, nds10, nds20, manual, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		receipt.ID,
		receipt.UserID,
		receipt.AccountID,
		receipt.SellerID,
		decimalToNumeric(receipt.TotalSum),
		string(receipt.OperationType),
		timeToPgTimestamptz(receipt.ReceiptDate),
		receipt.ReceiptNumber,
		decimalToNumeric(receipt.NDS10),
		decimalToNumeric(receipt.NDS20),
		receipt.Manual,
		timeToPgTimestamptz(receipt.CreatedAt),
		timeToPgTimestamptz(receipt.UpdatedAt),
	)

	return err
}

// GetByID retrieves a receipt by ID.
func (r *ReceiptRepository) GetByID(ctx context.Context, id string) (*domain.Receipt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id)

	return scanReceipt(row)
}

// GetByIDForUpdate retrieves a receipt with a FOR UPDATE lock.
func (r *ReceiptRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Receipt, error) {
	row := pgxTxFrom(tx).QueryRow(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE id = $1 FOR UPDATE`, id)

	return scanReceipt(row)
}

// Update updates a receipt inside the given transaction.
func (r *ReceiptRepository) Update(ctx context.Context, tx usecase.Transaction, receipt *domain.Receipt) error {
	tag, err := pgxTxFrom(tx).Exec(ctx, `
		UPDATE receipts
		SET account_id = $2, seller_id = $3, total_sum = $4, receipt_date = $5,
		    receipt_number = $6, nds10 = $7, nds20 = $8, updated_at = $9
		WHERE id = $1`,
		receipt.ID,
		receipt.AccountID,
		receipt.SellerID,
		decimalToNumeric(receipt.TotalSum),
		timeToPgTimestamptz(receipt.ReceiptDate),
		receipt.ReceiptNumber,
		decimalToNumeric(receipt.NDS10),
		decimalToNumeric(receipt.NDS20),
		timeToPgTimestamptz(receipt.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrReceiptNotFound
	}

	return nil
}

// Delete deletes a receipt inside the given transaction.
func (r *ReceiptRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := pgxTxFrom(tx).Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrReceiptNotFound
	}

	return nil
}

// ListByUser lists a user's receipts, newest first.
func (r *ReceiptRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Receipt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE user_id = $1 ORDER BY receipt_date DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := make([]*domain.Receipt, 0)
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}

		receipts = append(receipts, receipt)
	}

	return receipts, rows.Err()
}

// ExistsByDateAndTotal reports whether the user already has a receipt with
// the same date and total sum.
func (r *ReceiptRepository) ExistsByDateAndTotal(ctx context.Context, tx usecase.Transaction, userID string, date time.Time, total decimal.Decimal) (bool, error) {
	var exists bool

	err := pgxTxFrom(tx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM receipts
			WHERE user_id = $1 AND receipt_date = $2 AND total_sum = $3
		)`,
		userID, timeToPgTimestamptz(date), decimalToNumeric(total)).Scan(&exists)

	return exists, err
}

// ExistsByNumber reports whether the user already has a receipt with the
// same receipt number.
func (r *ReceiptRepository) ExistsByNumber(ctx context.Context, tx usecase.Transaction, userID, number string) (bool, error) {
	var exists bool

	err := pgxTxFrom(tx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM receipts
			WHERE user_id = $1 AND receipt_number = $2
		)`,
		userID, number).Scan(&exists)

	return exists, err
}

func scanReceipt(row pgx.Row) (*domain.Receipt, error) {
	var (
		receipt       domain.Receipt
		totalSum      pgtype.Numeric
		operationType string
		receiptDate   pgtype.Timestamptz
		nds10         pgtype.Numeric
		nds20         pgtype.Numeric
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&receipt.ID,
		&receipt.UserID,
		&receipt.AccountID,
		&receipt.SellerID,
		&totalSum,
		&operationType,
		&receiptDate,
		&receipt.ReceiptNumber,
		&nds10,
		&nds20,
		&receipt.Manual,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrReceiptNotFound
		}

		return nil, err
	}

	receipt.TotalSum = numericToDecimal(totalSum)
	receipt.OperationType = domain.OperationType(operationType)
	receipt.ReceiptDate = receiptDate.Time
	receipt.NDS10 = numericToDecimal(nds10)
	receipt.NDS20 = numericToDecimal(nds20)
	receipt.CreatedAt = createdAt.Time
	receipt.UpdatedAt = updatedAt.Time

	return &receipt, nil
}
