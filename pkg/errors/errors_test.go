package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("boom")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Status: 500, Err: inner}

	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "boom")
	assert.Equal(t, inner, errors.Unwrap(appErr))
}

func TestConstructors_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		status   int
		sentinel error
	}{
		{"not found", NotFound("order", "abc"), http.StatusNotFound, ErrNotFound},
		{"already exists", AlreadyExists("favorite", "product_id", "p1"), http.StatusConflict, ErrAlreadyExists},
		{"invalid input", InvalidInput("bad field"), http.StatusBadRequest, ErrInvalidInput},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", Forbidden("nope"), http.StatusForbidden, ErrForbidden},
		{"invalid signature", InvalidSignature(), http.StatusBadRequest, ErrInvalidSignature},
		{"invalid transition", InvalidTransition("order", "processing", "cancelled"), http.StatusConflict, ErrInvalidTransition},
		{"gateway unavailable", GatewayUnavailable(errors.New("dial tcp: timeout")), http.StatusServiceUnavailable, ErrGatewayUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestHTTPStatus_Sentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrConflict))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrInvalidTransition))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidSignature))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrGatewayUnavail))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("load order: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "fetch address")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "fetch address")
}
