package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature_Valid(t *testing.T) {
	secret := []byte("webhook-secret")
	body := []byte(`{"event":"payment.captured"}`)

	sig := ComputeSignature(secret, body)
	assert.True(t, VerifySignature(secret, body, sig))
}

func TestVerifySignature_TamperedBody(t *testing.T) {
	secret := []byte("webhook-secret")
	body := []byte(`{"event":"payment.captured"}`)

	sig := ComputeSignature(secret, body)
	tampered := []byte(`{"event":"payment.captured","amount":1}`)
	assert.False(t, VerifySignature(secret, tampered, sig))
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)

	sig := ComputeSignature([]byte("secret-a"), body)
	assert.False(t, VerifySignature([]byte("secret-b"), body, sig))
}

func TestVerifySignature_GarbageSignature(t *testing.T) {
	assert.False(t, VerifySignature([]byte("secret"), []byte("body"), "not-a-hex-mac"))
	assert.False(t, VerifySignature([]byte("secret"), []byte("body"), ""))
}

func TestParseWebhookEvent_Captured(t *testing.T) {
	body := []byte(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {"id": "pay_123", "order_id": "sess_abc"}}}
	}`)

	evt, err := ParseWebhookEvent(body)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentCaptured, evt.Type)
	assert.Equal(t, "sess_abc", evt.SessionID)
	assert.Equal(t, "pay_123", evt.PaymentRef)
}

func TestParseWebhookEvent_Failed(t *testing.T) {
	body := []byte(`{
		"event": "payment.failed",
		"payload": {"payment": {"entity": {"id": "pay_9", "order_id": "sess_x"}}}
	}`)

	evt, err := ParseWebhookEvent(body)
	require.NoError(t, err)
	assert.Equal(t, EventPaymentFailed, evt.Type)
}

func TestParseWebhookEvent_UnsupportedEvent(t *testing.T) {
	body := []byte(`{"event": "refund.created", "payload": {"payment": {"entity": {"order_id": "sess_x"}}}}`)

	_, err := ParseWebhookEvent(body)
	assert.Error(t, err)
}

func TestParseWebhookEvent_MissingSession(t *testing.T) {
	body := []byte(`{"event": "payment.captured", "payload": {"payment": {"entity": {"id": "pay_1"}}}}`)

	_, err := ParseWebhookEvent(body)
	assert.Error(t, err)
}

func TestParseWebhookEvent_MalformedJSON(t *testing.T) {
	_, err := ParseWebhookEvent([]byte(`{not json`))
	assert.Error(t, err)
}
