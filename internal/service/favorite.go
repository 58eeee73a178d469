package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrsourodip/helloKirana/internal/domain"
	"github.com/mrsourodip/helloKirana/internal/repository"
)

// FavoriteService implements the favorites toggle.
type FavoriteService struct {
	favorites repository.FavoriteRepository
	products  repository.ProductRepository
	logger    *slog.Logger
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(favorites repository.FavoriteRepository, products repository.ProductRepository, logger *slog.Logger) *FavoriteService {
	return &FavoriteService{
		favorites: favorites,
		products:  products,
		logger:    logger,
	}
}

// ListFavorites returns the user's favorites joined with their products.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID string) ([]domain.FavoriteProduct, error) {
	favorites, err := s.favorites.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favorites, nil
}

// AddFavorite marks a product as a favorite. A missing product is NotFound;
// a duplicate pair is a conflict.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, productID string) (*domain.Favorite, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}

	favorite := &domain.Favorite{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.favorites.Create(ctx, favorite); err != nil {
		return nil, fmt.Errorf("add favorite: %w", err)
	}

	s.logger.InfoContext(ctx, "favorite added",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return favorite, nil
}

// RemoveFavorite removes a favorite.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, productID string) error {
	if err := s.favorites.Delete(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}

	s.logger.InfoContext(ctx, "favorite removed",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return nil
}
