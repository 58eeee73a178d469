package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mrsourodip/helloKirana/internal/gateway"
	"github.com/mrsourodip/helloKirana/internal/service"
	apperrors "github.com/mrsourodip/helloKirana/pkg/errors"
	"github.com/mrsourodip/helloKirana/pkg/httputil"
)

// signatureHeader carries the gateway's hex HMAC-SHA256 over the raw body.
const signatureHeader = "X-Signature"

// WebhookHandler handles gateway webhook deliveries.
type WebhookHandler struct {
	service *service.OrderService
	secret  []byte
	logger  *slog.Logger
}

// NewWebhookHandler creates a new webhook HTTP handler.
func NewWebhookHandler(svc *service.OrderService, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: svc,
		secret:  []byte(secret),
		logger:  logger,
	}
}

// HandleWebhook handles POST /orders/webhook. The signature is verified over
// the exact raw body bytes before anything is parsed; verification failure is
// a 400 and the event is discarded.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to read request body"},
		})
		return
	}

	signature := r.Header.Get(signatureHeader)
	if signature == "" || !gateway.VerifySignature(h.secret, body, signature) {
		h.logger.WarnContext(r.Context(), "webhook signature verification failed",
			slog.String("remote_addr", r.RemoteAddr),
		)
		httputil.WriteError(w, r, apperrors.InvalidSignature(), h.logger)
		return
	}

	evt, err := gateway.ParseWebhookEvent(body)
	if err != nil {
		// A verified but unsupported event type is acknowledged so the
		// gateway stops redelivering it.
		if errors.Is(err, gateway.ErrUnsupportedEvent) {
			h.logger.InfoContext(r.Context(), "ignoring unsupported webhook event")
			httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "ignored"}})
			return
		}
		httputil.WriteError(w, r, apperrors.InvalidInput("malformed webhook payload"), h.logger)
		return
	}

	if err := h.service.ApplyGatewayEvent(r.Context(), evt); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "ok"}})
}
