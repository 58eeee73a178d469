package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mrsourodip/helloKirana/internal/domain"
	"github.com/mrsourodip/helloKirana/pkg/database"
	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
)

// AddressRepository implements repository.AddressRepository using PostgreSQL.
type AddressRepository struct {
	pool database.DBTX
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool database.DBTX) *AddressRepository {
	return &AddressRepository{pool: pool}
}

const addressColumns = `id, user_id, kind, street, city, region, postal_code, is_default, created_at`

// Create inserts a new address. The whole operation runs in one transaction
// so a concurrent reader never observes two defaults: the first address for
// a user is forced to default, and an explicit default request clears the
// previous default before the insert.
func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM addresses WHERE user_id = $1`,
		a.UserID,
	).Scan(&count); err != nil {
		return fmt.Errorf("count addresses: %w", err)
	}

	if count == 0 {
		a.IsDefault = true
	} else if a.IsDefault {
		if _, err := tx.Exec(ctx,
			`UPDATE addresses SET is_default = false WHERE user_id = $1 AND is_default = true`,
			a.UserID,
		); err != nil {
			return fmt.Errorf("unset default address: %w", err)
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO addresses (id, user_id, kind, street, city, region, postal_code, is_default, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID,
		a.UserID,
		a.Kind,
		a.Street,
		a.City,
		a.Region,
		a.PostalCode,
		a.IsDefault,
		a.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert address: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an address owned by the given user.
func (r *AddressRepository) GetByID(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE id = $1 AND user_id = $2`

	var a domain.Address
	err := r.pool.QueryRow(ctx, query, addressID, userID).Scan(
		&a.ID,
		&a.UserID,
		&a.Kind,
		&a.Street,
		&a.City,
		&a.Region,
		&a.PostalCode,
		&a.IsDefault,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("address", addressID)
		}
		return nil, fmt.Errorf("scan address: %w", err)
	}

	return &a, nil
}

// ListByUserID returns the user's addresses, newest first.
func (r *AddressRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]domain.Address, 0)
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.Kind,
			&a.Street,
			&a.City,
			&a.Region,
			&a.PostalCode,
			&a.IsDefault,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address rows: %w", err)
	}

	return addresses, nil
}

// Delete removes an address owned by the given user. If the deleted address
// was the default and other addresses remain, the most recently created one
// is promoted inside the same transaction, so the single-default invariant
// holds at commit.
func (r *AddressRepository) Delete(ctx context.Context, userID, addressID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var wasDefault bool
	err = tx.QueryRow(ctx,
		`DELETE FROM addresses WHERE id = $1 AND user_id = $2 RETURNING is_default`,
		addressID, userID,
	).Scan(&wasDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("address", addressID)
		}
		return fmt.Errorf("delete address: %w", err)
	}

	if wasDefault {
		if _, err := tx.Exec(ctx,
			`UPDATE addresses SET is_default = true
			 WHERE id = (
				SELECT id FROM addresses
				WHERE user_id = $1
				ORDER BY created_at DESC
				LIMIT 1
			 )`,
			userID,
		); err != nil {
			return fmt.Errorf("promote default address: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// SetDefault makes the given address the user's default. Clear-then-set runs
// in one transaction so a reader never observes zero or two defaults.
func (r *AddressRepository) SetDefault(ctx context.Context, userID, addressID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE addresses SET is_default = false WHERE user_id = $1 AND is_default = true`,
		userID,
	); err != nil {
		return fmt.Errorf("unset default address: %w", err)
	}

	ct, err := tx.Exec(ctx,
		`UPDATE addresses SET is_default = true WHERE id = $1 AND user_id = $2`,
		addressID, userID,
	)
	if err != nil {
		return fmt.Errorf("set default address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", addressID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
