//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"aurelia-commerce/internal/domain/user"
	"aurelia-commerce/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)
	userID := uuid.New()

	tokenString, err := svc.GenerateAccessToken(userID, "customer@example.com", user.RoleCustomer)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "customer@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
}

func TestService_ValidateToken(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)

	t.Run("rejects a garbled token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		other := jwt.NewService("other-secret", time.Hour)
		tokenString, err := other.GenerateAccessToken(uuid.New(), "a@example.com", user.RoleCustomer)
		require.NoError(t, err)

		_, err = svc.ValidateToken(tokenString)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		expired := jwt.NewService("test-secret", -time.Minute)
		tokenString, err := expired.GenerateAccessToken(uuid.New(), "a@example.com", user.RoleCustomer)
		require.NoError(t, err)

		_, err = svc.ValidateToken(tokenString)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})
}

func TestService_AccessTokenDuration(t *testing.T) {
	svc := jwt.NewService("test-secret", 45*time.Minute)
	assert.Equal(t, 45*time.Minute, svc.AccessTokenDuration())
}
