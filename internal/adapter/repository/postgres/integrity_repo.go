package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// IntegrityRepository implements usecase.IntegrityRepository.
type IntegrityRepository struct {
	pool *pgxpool.Pool
}

// NewIntegrityRepository creates a new IntegrityRepository.
func NewIntegrityRepository(pool *pgxpool.Pool) *IntegrityRepository {
	return &IntegrityRepository{pool: pool}
}

// CalculatedBalance recomputes an account balance from scratch: the opening
// balance plus the sum of signed effects of every expense, income and
// receipt against the account. Receipt signs follow the operation type:
// purchase and sale_refund debit, sale and purchase_refund credit.
func (r *IntegrityRepository) CalculatedBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var total pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT a.opening_balance + COALESCE((
			SELECT SUM(signed) FROM (
				SELECT -amount AS signed FROM expenses WHERE account_id = a.id
				UNION ALL
				SELECT amount AS signed FROM incomes WHERE account_id = a.id
				UNION ALL
				SELECT CASE
					WHEN operation_type IN ('purchase', 'sale_refund') THEN -total_sum
					ELSE total_sum
				END AS signed FROM receipts WHERE account_id = a.id
			) effects
		), 0)
		FROM accounts a WHERE a.id = $1`,
		accountID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}
