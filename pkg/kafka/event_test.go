package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	evt, err := NewEvent("order.created", "order-123", "order", "storefront", map[string]string{"total": "4500"})
	require.NoError(t, err)

	assert.NotEmpty(t, evt.EventID)
	assert.Equal(t, "order.created", evt.EventType)
	assert.Equal(t, "order-123", evt.AggregateID)
	assert.Equal(t, "order", evt.AggregateType)
	assert.Equal(t, 1, evt.Version)
	assert.False(t, evt.Timestamp.IsZero())
}

func TestEventRoundTrip(t *testing.T) {
	evt, err := NewEvent("order.cancelled", "order-9", "order", "storefront", map[string]int{"items": 3})
	require.NoError(t, err)
	evt.WithCorrelationID("corr-1").WithMetadata("reason", "customer_request")

	data, err := evt.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, evt.EventID, got.EventID)
	assert.Equal(t, "corr-1", got.CorrelationID)
	assert.Equal(t, "customer_request", got.Metadata["reason"])

	var payload map[string]int
	require.NoError(t, got.UnmarshalData(&payload))
	assert.Equal(t, 3, payload["items"])
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "kirana.order.created", Topic("order", "created"))
	assert.Equal(t, "kirana.order.payment_completed", Topic("order", "payment_completed"))
}
