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

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, user_id, account_id, amount, category, occurred_at, created_at, updated_at`

// Create inserts an expense inside the given transaction.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	_, err := pgxTxFrom(tx).Exec(ctx, `
		INSERT INTO expenses (id, user_id, account_id, amount, category, occurred_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		expense.ID,
		expense.UserID,
		expense.AccountID,
		decimalToNumeric(expense.Amount),
		expense.Category,
		timeToPgTimestamptz(expense.OccurredAt),
		timeToPgTimestamptz(expense.CreatedAt),
		timeToPgTimestamptz(expense.UpdatedAt),
	)

	return err
}

// GetByID retrieves an expense by ID.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id)

	return scanExpense(row)
}

// GetByIDForUpdate retrieves an expense with a FOR UPDATE lock.
func (r *ExpenseRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Expense, error) {
	row := pgxTxFrom(tx).QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = $1 FOR UPDATE`, id)

	return scanExpense(row)
}

// Update updates an expense inside the given transaction.
func (r *ExpenseRepository) Update(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	tag, err := pgxTxFrom(tx).Exec(ctx, `
		UPDATE expenses
		SET account_id = $2, amount = $3, category = $4, occurred_at = $5, updated_at = $6
		WHERE id = $1`,
		expense.ID,
		expense.AccountID,
		decimalToNumeric(expense.Amount),
		expense.Category,
		timeToPgTimestamptz(expense.OccurredAt),
		timeToPgTimestamptz(expense.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// Delete deletes an expense inside the given transaction.
func (r *ExpenseRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := pgxTxFrom(tx).Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// ListByUser lists a user's expenses, newest first.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Expense, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 ORDER BY occurred_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]*domain.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}

		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		expense    domain.Expense
		amount     pgtype.Numeric
		occurredAt pgtype.Timestamptz
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.AccountID,
		&amount,
		&expense.Category,
		&occurredAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}

		return nil, err
	}

	expense.Amount = numericToDecimal(amount)
	expense.OccurredAt = occurredAt.Time
	expense.CreatedAt = createdAt.Time
	expense.UpdatedAt = updatedAt.Time

	return &expense, nil
}
