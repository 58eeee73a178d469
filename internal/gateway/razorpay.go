package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
	"github.com/mrsourodip/helloKirana/pkg/httpclient"
)

// RazorpayConfig holds the credentials and endpoint for the Razorpay-style
// orders API.
type RazorpayConfig struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

// RazorpayClient implements Client against the Razorpay orders API. All
// outbound calls run through the circuit-breaker-wrapped HTTP client with a
// bounded timeout; any transport or upstream failure surfaces as
// GatewayUnavailable so the order stays pending and the open can be retried.
type RazorpayClient struct {
	cfg    RazorpayConfig
	client *httpclient.BreakerClient
}

// NewRazorpayClient creates a gateway client.
func NewRazorpayClient(cfg RazorpayConfig, client *httpclient.BreakerClient) *RazorpayClient {
	return &RazorpayClient{cfg: cfg, client: client}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateSession opens a remote payment session.
func (c *RazorpayClient) CreateSession(ctx context.Context, input *SessionInput) (*Session, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   input.Amount,
		Currency: input.Currency,
		Receipt:  input.Receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal create order request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, apperrors.GatewayUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apperrors.GatewayUnavailable(
			fmt.Errorf("gateway returned %d: %s", resp.StatusCode, payload),
		)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.GatewayUnavailable(fmt.Errorf("decode gateway response: %w", err))
	}

	return &Session{
		ID:       out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
	}, nil
}
