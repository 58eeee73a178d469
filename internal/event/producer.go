package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrsourodip/helloKirana/internal/domain"
	pkgkafka "github.com/mrsourodip/helloKirana/pkg/kafka"
	"github.com/mrsourodip/helloKirana/pkg/logger"
)

// Kafka topic constants for order domain events.
const (
	TopicOrderCreated          = "kirana.order.created"
	TopicOrderPaymentCompleted = "kirana.order.payment_completed"
	TopicOrderPaymentFailed    = "kirana.order.payment_failed"
	TopicOrderCancelled        = "kirana.order.cancelled"
)

// Aggregate type constant.
const AggregateTypeOrder = "order"

// Source identifier for events originating from this service.
const SourceStorefront = "storefront"

// OrderCreatedData is the payload for an order.created event (full order snapshot).
type OrderCreatedData struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id"`
	OrderState      string                  `json:"order_state"`
	PaymentState    string                  `json:"payment_state"`
	PaymentMethod   string                  `json:"payment_method"`
	Items           []OrderItemData         `json:"items"`
	TotalAmount     int64                   `json:"total_amount"`
	Currency        string                  `json:"currency"`
	ShippingAddress *domain.ShippingAddress `json:"shipping_address,omitempty"`
}

// OrderItemData is the event payload for an order line item.
type OrderItemData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitKind  string `json:"unit_kind"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// PaymentCompletedData is the payload for an order.payment_completed event.
type PaymentCompletedData struct {
	OrderID    string `json:"order_id"`
	SessionID  string `json:"session_id"`
	PaymentRef string `json:"payment_ref"`
	Amount     int64  `json:"amount"`
}

// PaymentFailedData is the payload for an order.payment_failed event.
type PaymentFailedData struct {
	OrderID   string `json:"order_id"`
	SessionID string `json:"session_id"`
}

// OrderCancelledData is the payload for an order.cancelled event.
type OrderCancelledData struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

// Producer publishes order domain events to Kafka. Publishing is best-effort:
// callers log failures and never fail the originating request over them.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitKind:  item.UnitKind,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	data := OrderCreatedData{
		ID:              order.ID,
		UserID:          order.UserID,
		OrderState:      order.OrderState,
		PaymentState:    order.PaymentState,
		PaymentMethod:   order.PaymentMethod,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		Currency:        order.Currency,
		ShippingAddress: order.ShippingAddress,
	}

	return p.publish(ctx, TopicOrderCreated, order.ID, data)
}

// PublishPaymentCompleted publishes an order.payment_completed event.
func (p *Producer) PublishPaymentCompleted(ctx context.Context, order *domain.Order) error {
	data := PaymentCompletedData{
		OrderID:    order.ID,
		SessionID:  order.GatewaySessionID,
		PaymentRef: order.GatewayPaymentRef,
		Amount:     order.TotalAmount,
	}
	return p.publish(ctx, TopicOrderPaymentCompleted, order.ID, data)
}

// PublishPaymentFailed publishes an order.payment_failed event.
func (p *Producer) PublishPaymentFailed(ctx context.Context, order *domain.Order) error {
	data := PaymentFailedData{
		OrderID:   order.ID,
		SessionID: order.GatewaySessionID,
	}
	return p.publish(ctx, TopicOrderPaymentFailed, order.ID, data)
}

// PublishOrderCancelled publishes an order.cancelled event.
func (p *Producer) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	data := OrderCancelledData{
		OrderID: order.ID,
		UserID:  order.UserID,
	}
	return p.publish(ctx, TopicOrderCancelled, order.ID, data)
}

func (p *Producer) publish(ctx context.Context, topic, orderID string, data any) error {
	event, err := pkgkafka.NewEvent(topic, orderID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published order event",
		slog.String("topic", topic),
		slog.String("order_id", orderID),
	)

	return nil
}
