package repository

import (
	"context"

	"github.com/mrsourodip/helloKirana/internal/domain"
)

// ProductFilter defines filter criteria for listing catalog products.
type ProductFilter struct {
	Category *string
	Search   *string
}

// AddressRepository defines the interface for address persistence operations.
// Implementations must uphold the single-default invariant: for any user at
// most one address is default, and exactly one when the user has any.
type AddressRepository interface {
	// Create inserts a new address. The first address for a user is forced
	// to default; an explicit default request clears the previous default in
	// the same transaction.
	Create(ctx context.Context, a *domain.Address) error

	// GetByID retrieves an address owned by the given user.
	GetByID(ctx context.Context, userID, addressID string) (*domain.Address, error)

	// ListByUserID returns the user's addresses, newest first.
	ListByUserID(ctx context.Context, userID string) ([]domain.Address, error)

	// Delete removes an address owned by the given user. If the deleted
	// address was the default and others remain, the most recently created
	// remaining address is promoted within the same transaction.
	Delete(ctx context.Context, userID, addressID string) error

	// SetDefault makes the given address the user's default, clearing any
	// previous default atomically.
	SetDefault(ctx context.Context, userID, addressID string) error
}

// OrderRepository defines the interface for order persistence operations.
type OrderRepository interface {
	// Create inserts a new order and its items into the store atomically.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order owned by the given user, including items.
	GetByID(ctx context.Context, userID, orderID string) (*domain.Order, error)

	// ListByUserID returns the user's orders newest first, including items.
	ListByUserID(ctx context.Context, userID string) ([]domain.Order, error)

	// GetLatest returns the user's most recently created order.
	GetLatest(ctx context.Context, userID string) (*domain.Order, error)

	// GetByGatewaySession retrieves an order by its gateway session id. Used
	// by the webhook path only, so it is not owner-scoped.
	GetByGatewaySession(ctx context.Context, sessionID string) (*domain.Order, error)

	// SetGatewaySession stores the gateway session id on an order, but only
	// if no session is recorded yet. Returns false when a concurrent call
	// already stored one; the caller should re-read and reuse it.
	SetGatewaySession(ctx context.Context, orderID, sessionID string) (bool, error)

	// MarkPaymentCompleted applies the captured-payment transition keyed on
	// the pre-state: payment pending becomes completed and the order moves
	// to processing. Returns false if the transition was already applied.
	MarkPaymentCompleted(ctx context.Context, sessionID, paymentRef string) (bool, error)

	// MarkPaymentFailed marks the payment failed, keyed on payment pending.
	// Returns false if the payment already left the pending state.
	MarkPaymentFailed(ctx context.Context, sessionID string) (bool, error)

	// Cancel moves an order to cancelled, but only while it is still pending
	// or confirmed. Returns false when no row matched the guard.
	Cancel(ctx context.Context, userID, orderID string) (bool, error)
}

// ProductRepository defines the read-only interface over the catalog.
type ProductRepository interface {
	// List returns products matching the filter.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)

	// GetByID retrieves a product by its ID.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// GetByIDs retrieves the products with the given IDs. Missing IDs are
	// simply absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	// ListRelated returns up to limit random products from the given
	// category, excluding the product itself.
	ListRelated(ctx context.Context, category, excludeID string, limit int) ([]domain.Product, error)
}

// FavoriteRepository defines the interface for favorite persistence.
type FavoriteRepository interface {
	// Create adds a favorite. A duplicate (user, product) pair returns
	// ErrAlreadyExists.
	Create(ctx context.Context, f *domain.Favorite) error

	// ListByUserID returns the user's favorites joined with their products.
	ListByUserID(ctx context.Context, userID string) ([]domain.FavoriteProduct, error)

	// Delete removes a favorite.
	Delete(ctx context.Context, userID, productID string) error
}
