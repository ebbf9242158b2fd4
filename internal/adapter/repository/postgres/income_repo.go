package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vkotov/finbook/internal/domain"
	"github.com/vkotov/finbook/internal/usecase"
)

// IncomeRepository implements usecase.IncomeRepository.
type IncomeRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeRepository creates a new IncomeRepository.
func NewIncomeRepository(pool *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{pool: pool}
}

const incomeColumns = `id, user_id, account_id, amount, category, occurred_at, created_at, updated_at`

// Create inserts an income inside the given transaction.
func (r *IncomeRepository) Create(ctx context.Context, tx usecase.Transaction, income *domain.Income) error {
	_, err := pgxTxFrom(tx).Exec(ctx, `
		INSERT INTO incomes (id, user_id, account_id, amount, category, occurred_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		income.ID,
		income.UserID,
		income.AccountID,
		decimalToNumeric(income.Amount),
		income.Category,
		timeToPgTimestamptz(income.OccurredAt),
		timeToPgTimestamptz(income.CreatedAt),
		timeToPgTimestamptz(income.UpdatedAt),
	)

	return err
}

// GetByID retrieves an income by ID.
func (r *IncomeRepository) GetByID(ctx context.Context, id string) (*domain.Income, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE id = $1`, id)

	return scanIncome(row)
}

// GetByIDForUpdate retrieves an income with a FOR UPDATE lock.
func (r *IncomeRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Income, error) {
	row := pgxTxFrom(tx).QueryRow(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE id = $1 FOR UPDATE`, id)

	return scanIncome(row)
}

// Update updates an income inside the given transaction.
func (r *IncomeRepository) Update(ctx context.Context, tx usecase.Transaction, income *domain.Income) error {
	tag, err := pgxTxFrom(tx).Exec(ctx, `
		UPDATE incomes
		SET account_id = $2, amount = $3, category = $4, occurred_at = $5, updated_at = $6
		WHERE id = $1`,
		income.ID,
		income.AccountID,
		decimalToNumeric(income.Amount),
		income.Category,
		timeToPgTimestamptz(income.OccurredAt),
		timeToPgTimestamptz(income.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}

	return nil
}

// Delete deletes an income inside the given transaction.
func (r *IncomeRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := pgxTxFrom(tx).Exec(ctx, `DELETE FROM incomes WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}

	return nil
}

// ListByUser lists a user's incomes, newest first.
func (r *IncomeRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Income, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+incomeColumns+` FROM incomes WHERE user_id = $1 ORDER BY occurred_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := make([]*domain.Income, 0)
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}

		incomes = append(incomes, income)
	}

	return incomes, rows.Err()
}

func scanIncome(row pgx.Row) (*domain.Income, error) {
	var (
		income     domain.Income
		amount     pgtype.Numeric
		occurredAt pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&income.ID,
		&income.UserID,
		&income.AccountID,
		&amount,
		&income.Category,
		&occurredAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeNotFound
		}

		return nil, err
	}

	income.Amount = numericToDecimal(amount)
	income.OccurredAt = occurredAt.Time
	income.CreatedAt = createdAt.Time
	income.UpdatedAt = updatedAt.Time

	return &income, nil
}
