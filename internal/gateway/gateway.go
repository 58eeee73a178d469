package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnsupportedEvent marks a verified webhook whose event type this service
// does not handle.
var ErrUnsupportedEvent = errors.New("unsupported webhook event")

// Webhook event types delivered by the gateway.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// SessionInput holds the parameters for opening a remote payment session.
type SessionInput struct {
	Amount   int64 // minor units
	Currency string
	Receipt  string // our order id, echoed back by the gateway
}

// Session is a remote payment session opened with the gateway. The client is
// redirected to the gateway with this session id to complete payment.
type Session struct {
	ID       string
	Amount   int64
	Currency string
}

// Client defines the interface to the hosted payment gateway.
type Client interface {
	// CreateSession opens a remote payment session for the given amount.
	CreateSession(ctx context.Context, input *SessionInput) (*Session, error)
}

// WebhookEvent is the parsed, verified payload of a gateway callback.
type WebhookEvent struct {
	Type       string // EventPaymentCaptured or EventPaymentFailed
	SessionID  string // the gateway session the payment belongs to
	PaymentRef string // gateway-side payment id
}

// webhookPayload mirrors the gateway's wire format.
type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhookEvent decodes a webhook body into a WebhookEvent. Call only
// after the signature has been verified.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	if p.Event != EventPaymentCaptured && p.Event != EventPaymentFailed {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedEvent, p.Event)
	}

	if p.Payload.Payment.Entity.OrderID == "" {
		return nil, fmt.Errorf("webhook payload missing session id")
	}

	return &WebhookEvent{
		Type:       p.Event,
		SessionID:  p.Payload.Payment.Entity.OrderID,
		PaymentRef: p.Payload.Payment.Entity.ID,
	}, nil
}
