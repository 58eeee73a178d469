package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name   string
		from   string
		to     string
		wantOK bool
	}{
		{"pending to confirmed", OrderStatePending, OrderStateConfirmed, true},
		{"pending to processing", OrderStatePending, OrderStateProcessing, true},
		{"pending to cancelled", OrderStatePending, OrderStateCancelled, true},
		{"pending to shipped", OrderStatePending, OrderStateShipped, false},
		{"confirmed to processing", OrderStateConfirmed, OrderStateProcessing, true},
		{"confirmed to cancelled", OrderStateConfirmed, OrderStateCancelled, true},
		{"processing to shipped", OrderStateProcessing, OrderStateShipped, true},
		{"processing to cancelled", OrderStateProcessing, OrderStateCancelled, false},
		{"shipped to delivered", OrderStateShipped, OrderStateDelivered, true},
		{"delivered is terminal", OrderStateDelivered, OrderStateCancelled, false},
		{"cancelled is terminal", OrderStateCancelled, OrderStateConfirmed, false},
		{"unknown state", "bogus", OrderStateConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Order{OrderState: tt.from}
			assert.Equal(t, tt.wantOK, o.CanTransitionTo(tt.to))
		})
	}
}

func TestCanCancel(t *testing.T) {
	assert.True(t, (&Order{OrderState: OrderStatePending}).CanCancel())
	assert.True(t, (&Order{OrderState: OrderStateConfirmed}).CanCancel())
	assert.False(t, (&Order{OrderState: OrderStateProcessing}).CanCancel())
	assert.False(t, (&Order{OrderState: OrderStateShipped}).CanCancel())
	assert.False(t, (&Order{OrderState: OrderStateDelivered}).CanCancel())
	assert.False(t, (&Order{OrderState: OrderStateCancelled}).CanCancel())
}

func TestLineTotal(t *testing.T) {
	item := OrderItem{UnitPrice: 4500, Quantity: 3}
	assert.Equal(t, int64(13500), item.LineTotal())
}

func TestIsValidHelpers(t *testing.T) {
	assert.True(t, IsValidPaymentMethod(PaymentMethodCashOnDelivery))
	assert.True(t, IsValidPaymentMethod(PaymentMethodGateway))
	assert.False(t, IsValidPaymentMethod("card"))

	assert.True(t, IsValidCategory(CategoryRice))
	assert.False(t, IsValidCategory("snacks"))

	assert.True(t, IsValidUnitKind(UnitKindWeight))
	assert.True(t, IsValidUnitKind(UnitKindPiece))
	assert.False(t, IsValidUnitKind("litre"))

	assert.True(t, IsValidAddressKind(AddressKindHome))
	assert.False(t, IsValidAddressKind("office"))
}
