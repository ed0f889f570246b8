package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func TestNewTokenService(t *testing.T) {
	service := NewTokenService(testSecret)
	require.NotNil(t, service, "NewTokenService should not return nil")
	assert.Equal(t, []byte(testSecret), service.Secret(), "jwtSecret was not initialized correctly")
}

func TestTokenService_GenerateToken(t *testing.T) {
	service := NewTokenService(testSecret)
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	tokenString, err := service.GenerateToken("ada", "session-1", expiry)
	require.NoError(t, err, "GenerateToken should not return an error")
	require.NotEmpty(t, tokenString)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err, "Failed to parse generated token")
	assert.Equal(t, jwt.SigningMethodHS256.Alg(), token.Method.Alg())

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "ada", claims["sub"], "Subject claim (sub) is incorrect")
	assert.Equal(t, "session-1", claims["jti"], "Session id claim (jti) is incorrect")
	assert.Equal(t, tokenIssuer, claims["iss"], "Issuer claim (iss) is incorrect")

	expClaim, ok := claims["exp"].(float64)
	require.True(t, ok, "Expiration claim (exp) should be a number")
	assert.EqualValues(t, expiry.Unix(), int64(expClaim))

	iatClaim, ok := claims["iat"].(float64)
	require.True(t, ok)
	assert.InDelta(t, time.Now().Unix(), int64(iatClaim), 5)
}

func TestTokenService_ValidateToken(t *testing.T) {
	service := NewTokenService(testSecret)

	t.Run("Success", func(t *testing.T) {
		tokenString, err := service.GenerateToken("ada", "session-1", time.Now().Add(time.Hour))
		require.NoError(t, err)

		claims, err := service.ValidateToken(tokenString)
		require.NoError(t, err)
		assert.Equal(t, "ada", claims.Subject)
		assert.Equal(t, "session-1", claims.ID)
	})

	t.Run("Expired", func(t *testing.T) {
		tokenString, err := service.GenerateToken("ada", "session-1", time.Now().Add(-time.Minute))
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		require.Error(t, err)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenService("another-secret")
		tokenString, err := other.GenerateToken("ada", "session-1", time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		require.Error(t, err)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("WrongSigningMethod", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "ada", "jti": "x", "iss": tokenIssuer})
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		require.Error(t, err)
	})

	t.Run("MissingSessionID", func(t *testing.T) {
		tokenString, err := service.GenerateToken("ada", "", time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = service.ValidateToken(tokenString)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token claims")
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := service.ValidateToken("not-a-jwt")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse token")
	})
}
