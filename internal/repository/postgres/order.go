package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mrsourodip/helloKirana/internal/domain"
	"github.com/mrsourodip/helloKirana/pkg/database"
	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, user_id, total_amount, currency, shipping_address, payment_method, payment_state, order_state, gateway_session_id, gateway_payment_ref, created_at, updated_at`

// Create inserts a new order and its items atomically within a transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	shippingJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshal shipping address: %w", err)
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, total_amount, currency, shipping_address, payment_method, payment_state, order_state, gateway_session_id, gateway_payment_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.TotalAmount,
		o.Currency,
		shippingJSON,
		o.PaymentMethod,
		o.PaymentState,
		o.OrderState,
		o.GatewaySessionID,
		o.GatewayPaymentRef,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, unit_kind, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.UnitKind,
			item.UnitPrice,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order owned by the given user, including its items.
func (r *OrderRepository) GetByID(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1 AND user_id = $2`

	return r.queryOne(ctx, query, orderID, userID)
}

// GetLatest returns the user's most recently created order, including items.
func (r *OrderRepository) GetLatest(ctx context.Context, userID string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	return r.queryOne(ctx, query, userID)
}

// GetByGatewaySession retrieves an order by gateway session id. Webhook path
// only; not owner-scoped.
func (r *OrderRepository) GetByGatewaySession(ctx context.Context, sessionID string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE gateway_session_id = $1`

	return r.queryOne(ctx, query, sessionID)
}

func (r *OrderRepository) queryOne(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	var (
		o            domain.Order
		shippingJSON []byte
	)

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&o.ID,
		&o.UserID,
		&o.TotalAmount,
		&o.Currency,
		&shippingJSON,
		&o.PaymentMethod,
		&o.PaymentState,
		&o.OrderState,
		&o.GatewaySessionID,
		&o.GatewayPaymentRef,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := unmarshalShipping(shippingJSON, &o); err != nil {
		return nil, err
	}

	items, err := r.loadOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// ListByUserID returns the user's orders newest first, items included.
func (r *OrderRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			o            domain.Order
			shippingJSON []byte
		)

		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.TotalAmount,
			&o.Currency,
			&shippingJSON,
			&o.PaymentMethod,
			&o.PaymentState,
			&o.OrderState,
			&o.GatewaySessionID,
			&o.GatewayPaymentRef,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		if err := unmarshalShipping(shippingJSON, &o); err != nil {
			return nil, err
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	// Batch-load items for all orders in a single query to avoid N+1.
	if len(orders) > 0 {
		orderIDs := make([]string, len(orders))
		for i := range orders {
			orderIDs[i] = orders[i].ID
		}

		itemsQuery := `
			SELECT id, order_id, product_id, name, unit_kind, unit_price, quantity
			FROM order_items
			WHERE order_id = ANY($1)
			ORDER BY id`

		itemRows, err := r.pool.Query(ctx, itemsQuery, orderIDs)
		if err != nil {
			return nil, fmt.Errorf("batch load order items: %w", err)
		}
		defer itemRows.Close()

		itemsByOrderID := make(map[string][]domain.OrderItem, len(orders))
		for itemRows.Next() {
			var item domain.OrderItem
			if err := itemRows.Scan(
				&item.ID,
				&item.OrderID,
				&item.ProductID,
				&item.Name,
				&item.UnitKind,
				&item.UnitPrice,
				&item.Quantity,
			); err != nil {
				return nil, fmt.Errorf("scan order item: %w", err)
			}
			itemsByOrderID[item.OrderID] = append(itemsByOrderID[item.OrderID], item)
		}
		if err := itemRows.Err(); err != nil {
			return nil, fmt.Errorf("iterate batch order item rows: %w", err)
		}

		for i := range orders {
			if items, ok := itemsByOrderID[orders[i].ID]; ok {
				orders[i].Items = items
			} else {
				orders[i].Items = []domain.OrderItem{}
			}
		}
	}

	return orders, nil
}

// SetGatewaySession stores the session id only when no session is recorded
// yet. A concurrent open that lost the race gets false and must reuse the
// winner's session.
func (r *OrderRepository) SetGatewaySession(ctx context.Context, orderID, sessionID string) (bool, error) {
	query := `
		UPDATE orders
		SET gateway_session_id = $1, updated_at = $2
		WHERE id = $3 AND gateway_session_id = ''`

	ct, err := r.pool.Exec(ctx, query, sessionID, time.Now().UTC(), orderID)
	if err != nil {
		return false, fmt.Errorf("set gateway session: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// MarkPaymentCompleted applies the captured-payment transition with a
// conditional update keyed on the pre-state. Delivering the same event twice
// matches zero rows the second time, which is how double delivery stays a
// no-op.
func (r *OrderRepository) MarkPaymentCompleted(ctx context.Context, sessionID, paymentRef string) (bool, error) {
	query := `
		UPDATE orders
		SET payment_state = $1, order_state = $2, gateway_payment_ref = $3, updated_at = $4
		WHERE gateway_session_id = $5 AND payment_state = $6`

	ct, err := r.pool.Exec(ctx, query,
		domain.PaymentStateCompleted,
		domain.OrderStateProcessing,
		paymentRef,
		time.Now().UTC(),
		sessionID,
		domain.PaymentStatePending,
	)
	if err != nil {
		return false, fmt.Errorf("mark payment completed: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// MarkPaymentFailed marks the payment failed, keyed on payment pending. The
// order state is left alone so the owner can see the order and retry with a
// new one.
func (r *OrderRepository) MarkPaymentFailed(ctx context.Context, sessionID string) (bool, error) {
	query := `
		UPDATE orders
		SET payment_state = $1, updated_at = $2
		WHERE gateway_session_id = $3 AND payment_state = $4`

	ct, err := r.pool.Exec(ctx, query,
		domain.PaymentStateFailed,
		time.Now().UTC(),
		sessionID,
		domain.PaymentStatePending,
	)
	if err != nil {
		return false, fmt.Errorf("mark payment failed: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// Cancel moves the order to cancelled with a conditional update guarded on
// the cancellable states. Owner-scoped.
func (r *OrderRepository) Cancel(ctx context.Context, userID, orderID string) (bool, error) {
	query := `
		UPDATE orders
		SET order_state = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND order_state IN ($5, $6)`

	ct, err := r.pool.Exec(ctx, query,
		domain.OrderStateCancelled,
		time.Now().UTC(),
		orderID,
		userID,
		domain.OrderStatePending,
		domain.OrderStateConfirmed,
	)
	if err != nil {
		return false, fmt.Errorf("cancel order: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// loadOrderItems retrieves all items belonging to a given order.
func (r *OrderRepository) loadOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, name, unit_kind, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Name,
			&item.UnitKind,
			&item.UnitPrice,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order item rows: %w", err)
	}

	return items, nil
}

func unmarshalShipping(data []byte, o *domain.Order) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	var addr domain.ShippingAddress
	if err := json.Unmarshal(data, &addr); err != nil {
		return fmt.Errorf("unmarshal shipping address: %w", err)
	}
	o.ShippingAddress = &addr
	return nil
}
