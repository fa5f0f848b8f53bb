package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, ttl time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(ttl, "sdr-power-queue", "dialer", false, "", "", "test-secret")
	require.NoError(t, err)
	return svc
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	token, err := svc.GenerateToken(" op-1 ")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "op-1", claims.Scope)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestGenerateTokenRequiresScope(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	_, err := svc.GenerateToken("  ")
	assert.ErrorIs(t, err, ErrScopeMissing)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	t.Run("Garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("OtherSecret", func(t *testing.T) {
		other, err := NewTokenService(time.Hour, "sdr-power-queue", "dialer", false, "", "", "another-secret")
		require.NoError(t, err)
		token, err := other.GenerateToken("op-1")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := newTestTokenService(t, -time.Minute)
		token, err := expired.GenerateToken("op-1")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("MissingSubject", func(t *testing.T) {
		raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"jti": "abc",
			"iat": time.Now().Unix(),
			"exp": time.Now().Add(time.Hour).Unix(),
			"iss": "sdr-power-queue",
			"aud": "dialer",
		})
		token, err := raw.SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestRevokeToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)
	token, err := svc.GenerateToken("op-1")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(token))

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
	assert.Error(t, svc.RevokeToken(token))
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService(time.Hour, "iss", "aud", false, "", "", "")
	assert.Error(t, err)
}
