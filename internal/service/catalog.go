package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrsourodip/helloKirana/internal/domain"
	"github.com/mrsourodip/helloKirana/internal/repository"
	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
)

// relatedProductCount is how many related products a lookup returns at most.
const relatedProductCount = 4

// CatalogService implements the read-only catalog surface.
type CatalogService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(products repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		logger:   logger,
	}
}

// ListProducts returns products, optionally filtered by category and a
// case-insensitive search over name, brand and description.
func (s *CatalogService) ListProducts(ctx context.Context, category, search string) ([]domain.Product, error) {
	var filter repository.ProductFilter
	if category != "" {
		if !domain.IsValidCategory(category) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown category %q", category))
		}
		filter.Category = &category
	}
	if search != "" {
		filter.Search = &search
	}

	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a single product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// ListRelated returns a random sample of products from the same category as
// the given product, excluding the product itself.
func (s *CatalogService) ListRelated(ctx context.Context, id string) ([]domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	related, err := s.products.ListRelated(ctx, product.Category, product.ID, relatedProductCount)
	if err != nil {
		return nil, fmt.Errorf("list related products: %w", err)
	}
	return related, nil
}
