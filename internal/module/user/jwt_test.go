package user

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistcurrent/server/internal/shared/config"
)

func newTestTokenManager(expiry time.Duration) *TokenManager {
	return NewTokenManager(&config.AuthConfig{
		JWTSecret:         "test-secret",
		AccessTokenExpiry: expiry,
		Issuer:            "mistcurrent-test",
	})
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTestTokenManager(time.Hour)
	u := &User{ID: uuid.New(), Email: "user@example.com"}

	token, expiresAt, err := m.GenerateToken(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestValidateTokenExpired(t *testing.T) {
	m := newTestTokenManager(-time.Minute)
	u := &User{ID: uuid.New(), Email: "user@example.com"}

	token, _, err := m.GenerateToken(u)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	u := &User{ID: uuid.New(), Email: "user@example.com"}

	token, _, err := newTestTokenManager(time.Hour).GenerateToken(u)
	require.NoError(t, err)

	other := NewTokenManager(&config.AuthConfig{
		JWTSecret:         "other-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "mistcurrent-test",
	})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenGarbage(t *testing.T) {
	m := newTestTokenManager(time.Hour)

	_, err := m.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
