package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret")

	token, err := m.GenerateToken("user-42", "ram@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "ram@example.com", claims.Email)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a").GenerateToken("user-1", "a@example.com", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	m := NewJWTManager("test-secret")

	token, err := m.GenerateToken("user-1", "a@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidatorAdaptsClaims(t *testing.T) {
	m := NewJWTManager("test-secret")
	token, err := m.GenerateToken("user-7", "b@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := m.Validator()(token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.UserID)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := NewJWTManager("test-secret").ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
