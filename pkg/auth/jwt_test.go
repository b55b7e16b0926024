package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-minimum-32-characters-long"

func TestGenerateJWT(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateJWT(userID, "test@example.com", "user", testSecret, 24)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestValidateJWT(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateJWT(userID, "test@example.com", "admin", testSecret, 24)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateJWTInvalidToken(t *testing.T) {
	_, err := ValidateJWT("invalid.token.here", testSecret)
	assert.Error(t, err)

	_, err = ValidateJWT("", testSecret)
	assert.Error(t, err)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(uuid.New(), "test@example.com", "user", testSecret, 24)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "wrong-secret-key-minimum-32-characters-long")
	assert.Error(t, err)
}

func TestJWTExpirationInFuture(t *testing.T) {
	token, err := GenerateJWT(uuid.New(), "test@example.com", "user", testSecret, 24)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)

	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestGenerateJWTRoles(t *testing.T) {
	for _, role := range []string{"user", "admin"} {
		token, err := GenerateJWT(uuid.New(), "test@example.com", role, testSecret, 24)
		require.NoError(t, err)

		claims, err := ValidateJWT(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, role, claims.Role)
	}
}
