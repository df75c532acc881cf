package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "reader", "Độc giả", "USER", testSecret, 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "reader", claims.Username)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "reader", claims.Subject)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(42, "reader", "Độc giả", "USER", testSecret, 15)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "another-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(42, "reader", "Độc giả", "USER", testSecret, -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(42, "token-id-1", testSecret, 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testSecret)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	// Parsing a refresh token through the access validator must not
	// hand out an authenticated identity.
	token, err := GenerateRefreshToken(42, "token-id-1", testSecret, 7)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	if err == nil {
		assert.Empty(t, claims.Username)
	}
}
