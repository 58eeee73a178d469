package domain

import "time"

// Payment methods.
const (
	PaymentMethodCashOnDelivery = "cash_on_delivery"
	PaymentMethodGateway        = "gateway"
)

// Payment states, orthogonal to the order state.
const (
	PaymentStatePending   = "pending"
	PaymentStateCompleted = "completed"
	PaymentStateFailed    = "failed"
)

// Order states.
const (
	OrderStatePending    = "pending"
	OrderStateConfirmed  = "confirmed"
	OrderStateProcessing = "processing"
	OrderStateShipped    = "shipped"
	OrderStateDelivered  = "delivered"
	OrderStateCancelled  = "cancelled"
)

// Currency is the only currency the storefront trades in.
const Currency = "INR"

// Order represents a customer order. Line items are immutable snapshots of
// the catalog at order time; the only fields that change after creation are
// the two states and the gateway references.
type Order struct {
	ID                string           `json:"id"`
	UserID            string           `json:"user_id"`
	Items             []OrderItem      `json:"items"`
	TotalAmount       int64            `json:"total_amount"`
	Currency          string           `json:"currency"`
	ShippingAddress   *ShippingAddress `json:"shipping_address"`
	PaymentMethod     string           `json:"payment_method"`
	PaymentState      string           `json:"payment_state"`
	OrderState        string           `json:"order_state"`
	GatewaySessionID  string           `json:"gateway_session_id,omitempty"`
	GatewayPaymentRef string           `json:"gateway_payment_ref,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// OrderItem is a line item snapshot. Price and unit kind are copied from the
// catalog at order time so later price changes never touch an existing order.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitKind  string `json:"unit_kind"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// LineTotal returns the total price for this line item.
func (i *OrderItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// ShippingAddress is the address snapshot frozen into an order.
type ShippingAddress struct {
	Kind       string `json:"kind"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

// IsValidPaymentMethod checks if a payment method string is valid.
func IsValidPaymentMethod(method string) bool {
	return method == PaymentMethodCashOnDelivery || method == PaymentMethodGateway
}

// AllowedTransitions defines which order state transitions are valid.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		OrderStatePending:    {OrderStateConfirmed, OrderStateProcessing, OrderStateCancelled},
		OrderStateConfirmed:  {OrderStateProcessing, OrderStateCancelled},
		OrderStateProcessing: {OrderStateShipped},
		OrderStateShipped:    {OrderStateDelivered},
		OrderStateDelivered:  {},
		OrderStateCancelled:  {},
	}
}

// CanTransitionTo checks if the order can move to the target state.
func (o *Order) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[o.OrderState]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// CanCancel reports whether the order may still be cancelled. Once
// fulfillment starts (processing or later) cancellation is refused.
func (o *Order) CanCancel() bool {
	return o.OrderState == OrderStatePending || o.OrderState == OrderStateConfirmed
}
