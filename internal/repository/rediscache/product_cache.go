package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mrsourodip/helloKirana/internal/domain"
	"github.com/mrsourodip/helloKirana/internal/repository"
)

const keyPrefix = "product:"

// ProductCache decorates a ProductRepository with a cache-aside Redis layer
// on GetByID. Cache failures are logged and fall through to the inner
// repository; the cache is never load-bearing.
type ProductCache struct {
	inner  repository.ProductRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewProductCache creates a caching decorator around the given repository.
func NewProductCache(inner repository.ProductRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *ProductCache {
	return &ProductCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetByID returns the cached product when present, otherwise reads through
// to the inner repository and populates the cache.
func (c *ProductCache) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	key := keyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var p domain.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		// Corrupt entry; drop it and read through.
		_ = c.client.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "product cache read failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	p, err := c.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "product cache write failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	return p, nil
}

// List passes through to the inner repository.
func (c *ProductCache) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	return c.inner.List(ctx, filter)
}

// GetByIDs passes through to the inner repository. Order pricing snapshots
// must come from the source of truth, not a cache.
func (c *ProductCache) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return c.inner.GetByIDs(ctx, ids)
}

// ListRelated passes through to the inner repository; results are a random
// sample, so they are not cached.
func (c *ProductCache) ListRelated(ctx context.Context, category, excludeID string, limit int) ([]domain.Product, error) {
	return c.inner.ListRelated(ctx, category, excludeID, limit)
}

// Invalidate removes a product from the cache.
func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del product: %w", err)
	}
	return nil
}
