package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-booking-engine/internal/domain"
)

const testSecret = "test-secret-0123456789abcdef-0123456789abcdef"

func TestTokenManager_AccessTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, 15, 60*24*7)

	token, err := tm.GenerateAccessToken(42, "admin@test.com", domain.RoleAdmin)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int32(42), claims.UserID)
	assert.Equal(t, "admin@test.com", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
}

func TestTokenManager_RefreshTokenType(t *testing.T) {
	tm := NewTokenManager(testSecret, 15, 60*24*7)

	token, err := tm.GenerateRefreshToken(42, "buyer@test.com", domain.RoleBuyer)
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
}

func TestTokenManager_RejectsTamperedToken(t *testing.T) {
	tm := NewTokenManager(testSecret, 15, 60*24*7)
	other := NewTokenManager("another-secret-0123456789abcdef-0123456789", 15, 60*24*7)

	token, err := other.GenerateAccessToken(42, "x@test.com", domain.RoleBuyer)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager(testSecret, -1, -1)

	token, err := tm.GenerateAccessToken(42, "x@test.com", domain.RoleBuyer)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret, 15, 60*24*7)

	_, err := tm.ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
