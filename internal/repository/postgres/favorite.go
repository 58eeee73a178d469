package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrsourodip/helloKirana/internal/domain"
	"github.com/mrsourodip/helloKirana/pkg/database"
	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
)

// FavoriteRepository implements repository.FavoriteRepository using PostgreSQL.
type FavoriteRepository struct {
	pool database.DBTX
}

// NewFavoriteRepository creates a new PostgreSQL-backed favorite repository.
func NewFavoriteRepository(pool database.DBTX) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// Create adds a favorite. A duplicate (user, product) pair surfaces as
// ErrAlreadyExists so the handler can answer 409.
func (r *FavoriteRepository) Create(ctx context.Context, f *domain.Favorite) error {
	query := `
		INSERT INTO favorites (user_id, product_id, created_at)
		VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, f.UserID, f.ProductID, f.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("favorite", "product_id", f.ProductID)
		}
		return fmt.Errorf("insert favorite: %w", err)
	}

	return nil
}

// ListByUserID returns the user's favorites joined with their products,
// newest favorite first.
func (r *FavoriteRepository) ListByUserID(ctx context.Context, userID string) ([]domain.FavoriteProduct, error) {
	query := `
		SELECT p.id, p.name, p.description, p.category, p.brand, p.image_url, p.stock, p.featured, p.unit_kind, p.unit_price, p.created_at, f.created_at
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]domain.FavoriteProduct, 0)
	for rows.Next() {
		var fp domain.FavoriteProduct
		if err := rows.Scan(
			&fp.Product.ID,
			&fp.Product.Name,
			&fp.Product.Description,
			&fp.Product.Category,
			&fp.Product.Brand,
			&fp.Product.ImageURL,
			&fp.Product.Stock,
			&fp.Product.Featured,
			&fp.Product.UnitKind,
			&fp.Product.UnitPrice,
			&fp.Product.CreatedAt,
			&fp.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scan favorite row: %w", err)
		}
		favorites = append(favorites, fp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite rows: %w", err)
	}

	return favorites, nil
}

// Delete removes a favorite.
func (r *FavoriteRepository) Delete(ctx context.Context, userID, productID string) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`

	ct, err := r.pool.Exec(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("favorite", productID)
	}

	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
