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

// SellerRepository implements usecase.SellerRepository.
type SellerRepository struct {
	pool *pgxpool.Pool
}

// NewSellerRepository creates a new SellerRepository.
func NewSellerRepository(pool *pgxpool.Pool) *SellerRepository {
	return &SellerRepository{pool: pool}
}

const sellerColumns = `id, user_id, name, address, retail_place, created_at, updated_at`

// Upsert creates the seller or refreshes its address fields, keyed by
// (user, name). The stored row is returned either way.
func (r *SellerRepository) Upsert(ctx context.Context, tx usecase.Transaction, seller *domain.Seller) (*domain.Seller, error) {
	row := pgxTxFrom(tx).QueryRow(ctx, `
		INSERT INTO sellers (id, user_id, name, address, retail_place, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, name) DO UPDATE
		SET address = EXCLUDED.address,
		    retail_place = EXCLUDED.retail_place,
		    updated_at = EXCLUDED.updated_at
		RETURNING `+sellerColumns,
		seller.ID,
		seller.UserID,
		seller.Name,
		seller.Address,
		seller.RetailPlace,
		timeToPgTimestamptz(seller.CreatedAt),
		timeToPgTimestamptz(seller.UpdatedAt),
	)

	return scanSeller(row)
}

// GetByID retrieves a seller by ID.
func (r *SellerRepository) GetByID(ctx context.Context, id string) (*domain.Seller, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+sellerColumns+` FROM sellers WHERE id = $1`, id)

	return scanSeller(row)
}

// ListByUser lists a user's sellers alphabetically.
func (r *SellerRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Seller, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sellerColumns+` FROM sellers WHERE user_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		userID, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sellers := make([]*domain.Seller, 0)
	for rows.Next() {
		seller, err := scanSeller(rows)
		if err != nil {
			return nil, err
		}

		sellers = append(sellers, seller)
	}

	return sellers, rows.Err()
}

func scanSeller(row pgx.Row) (*domain.Seller, error) {
	var (
		seller    domain.Seller
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&seller.ID,
		&seller.UserID,
		&seller.Name,
		&seller.Address,
		&seller.RetailPlace,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSellerNotFound
		}

		return nil, err
	}

	seller.CreatedAt = createdAt.Time
	seller.UpdatedAt = updatedAt.Time

	return &seller, nil
}
