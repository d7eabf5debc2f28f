//go:build unit

package user_test

import (
	"testing"

	"aurelia-commerce/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		email, err := user.NewEmail("  Customer@Example.COM ")
		require.NoError(t, err)
		assert.Equal(t, "customer@example.com", email.Value())
	})

	t.Run("rejects invalid formats", func(t *testing.T) {
		for _, s := range []string{"", "no-at-sign.com", "missing@tld", "@example.com", "a b@example.com"} {
			_, err := user.NewEmail(s)
			assert.ErrorIs(t, err, user.ErrInvalidEmail, s)
		}
	})
}

func TestNewPassword(t *testing.T) {
	_, err := user.NewPassword("short7!")
	assert.ErrorIs(t, err, user.ErrPasswordTooWeak)

	pw, err := user.NewPassword("longenough")
	require.NoError(t, err)
	assert.Equal(t, "longenough", pw.Value())
}

func TestNewRole(t *testing.T) {
	role, err := user.NewRole("admin")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, role)

	_, err = user.NewRole("superuser")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}
