package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mrsourodip/helloKirana/internal/domain"
	"github.com/mrsourodip/helloKirana/internal/event"
	"github.com/mrsourodip/helloKirana/internal/gateway"
	"github.com/mrsourodip/helloKirana/internal/repository"
	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
)

// OrderService implements the order ledger, the payment session flow and the
// order state machine.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	addresses repository.AddressRepository
	gateway   gateway.Client
	producer  *event.Producer
	logger    *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	addresses repository.AddressRepository,
	gw gateway.Client,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		addresses: addresses,
		gateway:   gw,
		producer:  producer,
		logger:    logger,
	}
}

// CreateOrderItemInput holds one requested line item. Only the product
// reference and quantity come from the client; name and price are snapshotted
// from the catalog server-side.
type CreateOrderItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	UserID        string
	Items         []CreateOrderItemInput
	AddressID     string
	PaymentMethod string
}

// PaymentSession is the result of opening (or reusing) a gateway session.
type PaymentSession struct {
	OrderID   string `json:"order_id"`
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
}

// CreateOrder creates a new order. The total is always computed server-side
// from catalog snapshot prices, never taken from the client. A cash-on-
// delivery order is confirmed immediately; a gateway order stays pending
// until the webhook arrives.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if input.UserID == "" {
		return nil, apperrors.InvalidInput("user_id is required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be positive")
		}
	}
	if !domain.IsValidPaymentMethod(input.PaymentMethod) {
		return nil, apperrors.InvalidInput("payment_method must be cash_on_delivery or gateway")
	}

	// Snapshot the shipping address. Owner-scoped lookup, so an address id
	// belonging to someone else is NotFound.
	address, err := s.addresses.GetByID(ctx, input.UserID, input.AddressID)
	if err != nil {
		return nil, fmt.Errorf("resolve shipping address: %w", err)
	}

	// Snapshot catalog prices.
	productIDs := make([]string, len(input.Items))
	for i, item := range input.Items {
		productIDs[i] = item.ProductID
	}
	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	productsByID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	var total int64
	items := make([]domain.OrderItem, len(input.Items))
	for i, itemInput := range input.Items {
		product, ok := productsByID[itemInput.ProductID]
		if !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown product %s", itemInput.ProductID))
		}
		items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: product.ID,
			Name:      product.Name,
			UnitKind:  product.UnitKind,
			UnitPrice: product.UnitPrice,
			Quantity:  itemInput.Quantity,
		}
		total += items[i].LineTotal()
	}

	orderState := domain.OrderStatePending
	if input.PaymentMethod == domain.PaymentMethodCashOnDelivery {
		// Nothing to await for COD.
		orderState = domain.OrderStateConfirmed
	}

	order := &domain.Order{
		ID:          orderID,
		UserID:      input.UserID,
		Items:       items,
		TotalAmount: total,
		Currency:    domain.Currency,
		ShippingAddress: &domain.ShippingAddress{
			Kind:       address.Kind,
			Street:     address.Street,
			City:       address.City,
			Region:     address.Region,
			PostalCode: address.PostalCode,
		},
		PaymentMethod: input.PaymentMethod,
		PaymentState:  domain.PaymentStatePending,
		OrderState:    orderState,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
		slog.String("payment_method", order.PaymentMethod),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// GetOrder retrieves one of the user's orders.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetLatestOrder returns the user's most recently created order.
func (s *OrderService) GetLatestOrder(ctx context.Context, userID string) (*domain.Order, error) {
	order, err := s.orders.GetLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get latest order: %w", err)
	}
	return order, nil
}

// CreatePaymentSession opens a gateway session for a pending gateway order.
// The call is safe to retry: an order that already has a session id gets the
// same session back, and a concurrent open that loses the conditional write
// adopts the winner's session.
func (s *OrderService) CreatePaymentSession(ctx context.Context, userID, orderID string) (*PaymentSession, error) {
	order, err := s.orders.GetByID(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if order.PaymentMethod != domain.PaymentMethodGateway {
		return nil, apperrors.InvalidInput("order is not a gateway payment order")
	}
	if order.PaymentState != domain.PaymentStatePending {
		return nil, apperrors.InvalidTransition("order", order.PaymentState, domain.PaymentStatePending)
	}

	if order.GatewaySessionID != "" {
		return &PaymentSession{
			OrderID:   order.ID,
			SessionID: order.GatewaySessionID,
			Amount:    order.TotalAmount,
			Currency:  order.Currency,
		}, nil
	}

	session, err := s.gateway.CreateSession(ctx, &gateway.SessionInput{
		Amount:   order.TotalAmount,
		Currency: order.Currency,
		Receipt:  order.ID,
	})
	if err != nil {
		// The order stays pending; the client may retry with the same order.
		return nil, fmt.Errorf("open gateway session: %w", err)
	}

	applied, err := s.orders.SetGatewaySession(ctx, order.ID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("store gateway session: %w", err)
	}
	if !applied {
		// A concurrent open won the race; reuse its session.
		order, err = s.orders.GetByID(ctx, userID, orderID)
		if err != nil {
			return nil, fmt.Errorf("reload order: %w", err)
		}
		s.logger.InfoContext(ctx, "reusing concurrent gateway session",
			slog.String("order_id", order.ID),
			slog.String("session_id", order.GatewaySessionID),
		)
		return &PaymentSession{
			OrderID:   order.ID,
			SessionID: order.GatewaySessionID,
			Amount:    order.TotalAmount,
			Currency:  order.Currency,
		}, nil
	}

	s.logger.InfoContext(ctx, "gateway session opened",
		slog.String("order_id", order.ID),
		slog.String("session_id", session.ID),
		slog.Int64("amount", order.TotalAmount),
	)

	return &PaymentSession{
		OrderID:   order.ID,
		SessionID: session.ID,
		Amount:    order.TotalAmount,
		Currency:  order.Currency,
	}, nil
}

// ApplyGatewayEvent applies a verified webhook event to the order it names.
// Double delivery is harmless: the transition is a conditional update keyed
// on the pre-state, and an already-applied event short-circuits successfully.
func (s *OrderService) ApplyGatewayEvent(ctx context.Context, evt *gateway.WebhookEvent) error {
	order, err := s.orders.GetByGatewaySession(ctx, evt.SessionID)
	if err != nil {
		return fmt.Errorf("find order for session %s: %w", evt.SessionID, err)
	}

	switch evt.Type {
	case gateway.EventPaymentCaptured:
		if order.PaymentState == domain.PaymentStateCompleted {
			s.logger.InfoContext(ctx, "duplicate capture event ignored",
				slog.String("order_id", order.ID),
				slog.String("session_id", evt.SessionID),
			)
			return nil
		}

		applied, err := s.orders.MarkPaymentCompleted(ctx, evt.SessionID, evt.PaymentRef)
		if err != nil {
			return fmt.Errorf("mark payment completed: %w", err)
		}
		if !applied {
			// Lost the race to a concurrent delivery, or the payment had
			// already left pending. Either way there is nothing to redo.
			s.logger.InfoContext(ctx, "capture event matched no pending payment",
				slog.String("order_id", order.ID),
				slog.String("session_id", evt.SessionID),
			)
			return nil
		}

		order.PaymentState = domain.PaymentStateCompleted
		order.OrderState = domain.OrderStateProcessing
		order.GatewayPaymentRef = evt.PaymentRef
		if err := s.producer.PublishPaymentCompleted(ctx, order); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish payment_completed event",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}

		s.logger.InfoContext(ctx, "payment captured",
			slog.String("order_id", order.ID),
			slog.String("payment_ref", evt.PaymentRef),
		)
		return nil

	case gateway.EventPaymentFailed:
		if order.PaymentState == domain.PaymentStateFailed {
			return nil
		}

		applied, err := s.orders.MarkPaymentFailed(ctx, evt.SessionID)
		if err != nil {
			return fmt.Errorf("mark payment failed: %w", err)
		}
		if !applied {
			return nil
		}

		order.PaymentState = domain.PaymentStateFailed
		if err := s.producer.PublishPaymentFailed(ctx, order); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish payment_failed event",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}

		s.logger.InfoContext(ctx, "payment failed",
			slog.String("order_id", order.ID),
			slog.String("session_id", evt.SessionID),
		)
		return nil

	default:
		return apperrors.InvalidInput(fmt.Sprintf("unsupported gateway event %q", evt.Type))
	}
}

// CancelOrder cancels one of the user's orders. Allowed only while the order
// is pending or confirmed; once fulfillment starts the guard refuses.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	applied, err := s.orders.Cancel(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}

	if !applied {
		// Distinguish a missing order from one past the cancellable states.
		order, err := s.orders.GetByID(ctx, userID, orderID)
		if err != nil {
			return nil, fmt.Errorf("get order: %w", err)
		}
		return nil, apperrors.InvalidTransition("order", order.OrderState, domain.OrderStateCancelled)
	}

	order, err := s.orders.GetByID(ctx, userID, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload cancelled order: %w", err)
	}

	if err := s.producer.PublishOrderCancelled(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.cancelled event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order cancelled",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
	)

	return order, nil
}
