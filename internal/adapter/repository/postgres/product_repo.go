package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/usecase"
)

// ProductRepository implements usecase.ProductRepository.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// CreateBatch inserts receipt line items inside the given transaction.
func (r *ProductRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(`
			INSERT INTO products (id, receipt_id, product_name, price, quantity, amount, nds_type, nds_sum, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID,
			p.ReceiptID,
			p.ProductName,
			decimalToNumeric(p.Price),
			decimalToNumeric(p.Quantity),
			decimalToNumeric(p.Amount),
			p.NDSType,
			decimalToNumeric(p.NDSSum),
			timeToPgTimestamptz(p.CreatedAt),
		)
	}

	results := tx.(*Tx).PgxTx().SendBatch(ctx, batch)
	defer results.Close()

	for range products {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return results.Close()
}

// DeleteByReceipt removes all line items of a receipt.
func (r *ProductRepository) DeleteByReceipt(ctx context.Context, tx usecase.Transaction, receiptID string) error {
	_, err := pgxTxFrom(tx).Exec(ctx, `DELETE FROM products WHERE receipt_id = $1`, receiptID)
	return err
}

// ListByReceipt lists the line items of a receipt in insertion order.
func (r *ProductRepository) ListByReceipt(ctx context.Context, receiptID string) ([]*domain.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, receipt_id, product_name, price, quantity, amount, nds_type, nds_sum, created_at
		FROM products WHERE receipt_id = $1 ORDER BY id`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		var (
			p         domain.Product
			price     pgtype.Numeric
			quantity  pgtype.Numeric
			amount    pgtype.Numeric
			ndsSum    pgtype.Numeric
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&p.ID,
			&p.ReceiptID,
			&p.ProductName,
			&price,
			&quantity,
			&amount,
			&p.NDSType,
			&ndsSum,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		p.Price = numericToDecimal(price)
		p.Quantity = numericToDecimal(quantity)
		p.Amount = numericToDecimal(amount)
		p.NDSSum = numericToDecimal(ndsSum)
		p.CreatedAt = createdAt.Time

		products = append(products, &p)
	}

	return products, rows.Err()
}
