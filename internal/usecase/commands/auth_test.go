//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"aurelia-commerce/internal/domain/user"
	"aurelia-commerce/internal/pkg/clock"
	"aurelia-commerce/internal/pkg/config"
	"aurelia-commerce/internal/pkg/jwt"
	"aurelia-commerce/internal/pkg/password"
	"aurelia-commerce/internal/pkg/token"
	"aurelia-commerce/internal/usecase/commands"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthCommands(f *fakeUoW) commands.AuthCommands {
	cfg := config.NewTestConfig()
	clk := clock.NewMockClock(testTime)
	carts := commands.NewCartCommands(f, clk, cfg.Cart)
	return commands.NewAuthCommands(f, jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenDuration), clk, carts, cfg.JWT)
}

func seedActiveUser(t *testing.T, f *fakeUoW, email, rawPassword string) uuid.UUID {
	t.Helper()
	hash, err := password.HashPassword(rawPassword)
	require.NoError(t, err)
	id := uuid.New()
	f.addUser(shared.UserSnapshot{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Role:         user.RoleCustomer.String(),
		IsActive:     true,
	})
	return id
}

func TestAuthCommands_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account and issues both tokens", func(t *testing.T) {
		f := newFakeUoW()
		svc := newAuthCommands(f)

		result, err := svc.Register(ctx, commands.RegisterInput{Email: "ada@example.com", Password: "opensesame"})
		require.NoError(t, err)

		assert.Equal(t, "ada@example.com", result.Email)
		assert.Equal(t, user.RoleCustomer, result.Role)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)

		stored, ok := f.users[result.UserID]
		require.True(t, ok)
		assert.True(t, stored.IsActive)
		assert.NoError(t, password.ComparePassword(stored.PasswordHash, "opensesame"))

		// Only the hash hits storage.
		require.Len(t, f.tokens, 1)
		for _, tok := range f.tokens {
			assert.Equal(t, token.Hash(result.RefreshToken), tok.TokenHash)
			assert.Equal(t, result.UserID, tok.UserID)
			assert.False(t, tok.Revoked)
		}
	})

	t.Run("merges the guest cart into the new account", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 10))
		svc := newAuthCommands(f)
		_, err := newCartCommands(f).AddItem(ctx, shared.OwnerForSession("sess-1"), p.ID, 2)
		require.NoError(t, err)

		result, err := svc.Register(ctx, commands.RegisterInput{
			Email:     "ada@example.com",
			Password:  "opensesame",
			SessionID: strPtr("sess-1"),
		})
		require.NoError(t, err)

		merged := f.cartForOwner(shared.OwnerForUser(result.UserID))
		require.NotNil(t, merged)
		assert.Equal(t, 2, merged.Lines[0].Quantity)
		assert.Nil(t, f.cartForOwner(shared.OwnerForSession("sess-1")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFakeUoW()
		seedActiveUser(t, f, "ada@example.com", "opensesame")
		svc := newAuthCommands(f)

		_, err := svc.Register(ctx, commands.RegisterInput{Email: "Ada@Example.com", Password: "opensesame"})
		assert.ErrorIs(t, err, commands.ErrEmailAlreadyExists)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		f := newFakeUoW()
		svc := newAuthCommands(f)

		_, err := svc.Register(ctx, commands.RegisterInput{Email: "ada@example.com", Password: "short"})
		assert.Error(t, err)
	})
}

func TestAuthCommands_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a fresh token family", func(t *testing.T) {
		f := newFakeUoW()
		userID := seedActiveUser(t, f, "ada@example.com", "opensesame")
		svc := newAuthCommands(f)

		result, err := svc.Login(ctx, commands.LoginInput{Email: "ada@example.com", Password: "opensesame"})
		require.NoError(t, err)
		assert.Equal(t, userID, result.UserID)
		assert.NotEmpty(t, result.RefreshToken)
		require.Len(t, f.tokens, 1)
	})

	t.Run("two logins get independent families", func(t *testing.T) {
		f := newFakeUoW()
		seedActiveUser(t, f, "ada@example.com", "opensesame")
		svc := newAuthCommands(f)

		first, err := svc.Login(ctx, commands.LoginInput{Email: "ada@example.com", Password: "opensesame"})
		require.NoError(t, err)
		second, err := svc.Login(ctx, commands.LoginInput{Email: "ada@example.com", Password: "opensesame"})
		require.NoError(t, err)
		require.NotEqual(t, first.RefreshToken, second.RefreshToken)

		families := map[uuid.UUID]bool{}
		for _, tok := range f.tokens {
			families[tok.FamilyID] = true
		}
		assert.Len(t, families, 2)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFakeUoW()
		seedActiveUser(t, f, "ada@example.com", "opensesame")
		svc := newAuthCommands(f)

		_, err := svc.Login(ctx, commands.LoginInput{Email: "ada@example.com", Password: "wrong-pass"})
		assert.ErrorIs(t, err, commands.ErrInvalidCredentials)
	})

	t.Run("unknown email looks like bad credentials", func(t *testing.T) {
		f := newFakeUoW()
		svc := newAuthCommands(f)

		_, err := svc.Login(ctx, commands.LoginInput{Email: "ghost@example.com", Password: "opensesame"})
		assert.ErrorIs(t, err, commands.ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		f := newFakeUoW()
		userID := seedActiveUser(t, f, "ada@example.com", "opensesame")
		f.users[userID].IsActive = false
		svc := newAuthCommands(f)

		_, err := svc.Login(ctx, commands.LoginInput{Email: "ada@example.com", Password: "opensesame"})
		assert.ErrorIs(t, err, commands.ErrAccountInactive)
	})
}

func TestAuthCommands_Refresh(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T) (*fakeUoW, commands.AuthCommands, *commands.AuthResult) {
		t.Helper()
		f := newFakeUoW()
		seedActiveUser(t, f, "ada@example.com", "opensesame")
		svc := newAuthCommands(f)
		result, err := svc.Login(ctx, commands.LoginInput{Email: "ada@example.com", Password: "opensesame"})
		require.NoError(t, err)
		return f, svc, result
	}

	t.Run("rotates within the same family", func(t *testing.T) {
		f, svc, session := login(t)

		rotated, err := svc.Refresh(ctx, session.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, session.RefreshToken, rotated.RefreshToken)
		assert.NotEmpty(t, rotated.AccessToken)

		require.Len(t, f.tokens, 2)
		var family uuid.UUID
		for _, tok := range f.tokens {
			if family == uuid.Nil {
				family = tok.FamilyID
			}
			assert.Equal(t, family, tok.FamilyID)
			if tok.TokenHash == token.Hash(session.RefreshToken) {
				assert.True(t, tok.Revoked)
				assert.NotNil(t, tok.ReplacedBy)
			}
			if tok.TokenHash == token.Hash(rotated.RefreshToken) {
				assert.False(t, tok.Revoked)
			}
		}
	})

	t.Run("reusing a rotated token revokes the family", func(t *testing.T) {
		f, svc, session := login(t)

		rotated, err := svc.Refresh(ctx, session.RefreshToken)
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, commands.ErrRefreshTokenReused)

		// The descendant dies with the family.
		for _, tok := range f.tokens {
			assert.True(t, tok.Revoked)
		}
		_, err = svc.Refresh(ctx, rotated.RefreshToken)
		assert.ErrorIs(t, err, commands.ErrRefreshTokenReused)
	})

	t.Run("expired token is revoked, family survives", func(t *testing.T) {
		f, svc, session := login(t)
		for _, tok := range f.tokens {
			tok.ExpiresAt = testTime.Add(-time.Minute)
			tok.LastUsedAt = testTime.Add(-time.Minute)
		}

		_, err := svc.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, commands.ErrRefreshTokenExpired)

		for _, tok := range f.tokens {
			assert.True(t, tok.Revoked)
			assert.Nil(t, tok.ReplacedBy)
		}
	})

	t.Run("idle token expires the session", func(t *testing.T) {
		f, svc, session := login(t)
		for _, tok := range f.tokens {
			tok.LastUsedAt = testTime.Add(-400 * time.Hour)
		}

		_, err := svc.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, commands.ErrRefreshTokenIdle)
		assert.NotErrorIs(t, err, commands.ErrRefreshTokenExpired)

		for _, tok := range f.tokens {
			assert.True(t, tok.Revoked)
		}
	})

	t.Run("role change forces a fresh login", func(t *testing.T) {
		f, svc, session := login(t)
		for _, u := range f.users {
			u.Role = "admin"
		}

		_, err := svc.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, commands.ErrAccountInactive)

		// The presented token is dead; no rotation happened, so no token
		// carries the new role.
		require.Len(t, f.tokens, 1)
		for _, tok := range f.tokens {
			assert.True(t, tok.Revoked)
			assert.Equal(t, "customer", tok.Role)
		}
	})

	t.Run("deactivated user loses every session", func(t *testing.T) {
		f, svc, session := login(t)
		rotated, err := svc.Refresh(ctx, session.RefreshToken)
		require.NoError(t, err)

		for _, u := range f.users {
			u.IsActive = false
		}

		_, err = svc.Refresh(ctx, rotated.RefreshToken)
		assert.ErrorIs(t, err, commands.ErrAccountInactive)
		for _, tok := range f.tokens {
			assert.True(t, tok.Revoked)
		}
	})

	t.Run("unknown or empty token", func(t *testing.T) {
		f := newFakeUoW()
		svc := newAuthCommands(f)

		_, err := svc.Refresh(ctx, "")
		assert.ErrorIs(t, err, commands.ErrInvalidRefreshToken)

		_, err = svc.Refresh(ctx, "no-such-token")
		assert.ErrorIs(t, err, commands.ErrInvalidRefreshToken)
	})
}

func TestAuthCommands_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes the whole family", func(t *testing.T) {
		f := newFakeUoW()
		seedActiveUser(t, f, "ada@example.com", "opensesame")
		svc := newAuthCommands(f)
		session, err := svc.Login(ctx, commands.LoginInput{Email: "ada@example.com", Password: "opensesame"})
		require.NoError(t, err)
		rotated, err := svc.Refresh(ctx, session.RefreshToken)
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
		for _, tok := range f.tokens {
			assert.True(t, tok.Revoked)
		}
	})

	t.Run("unknown and empty tokens are no-ops", func(t *testing.T) {
		f := newFakeUoW()
		svc := newAuthCommands(f)

		assert.NoError(t, svc.Logout(ctx, ""))
		assert.NoError(t, svc.Logout(ctx, "no-such-token"))
	})
}

func TestAuthCommands_ChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("rehashes and revokes every session", func(t *testing.T) {
		f := newFakeUoW()
		userID := seedActiveUser(t, f, "ada@example.com", "opensesame")
		svc := newAuthCommands(f)
		_, err := svc.Login(ctx, commands.LoginInput{Email: "ada@example.com", Password: "opensesame"})
		require.NoError(t, err)

		require.NoError(t, svc.ChangePassword(ctx, userID, "opensesame", "newsesame42"))

		assert.NoError(t, password.ComparePassword(f.users[userID].PasswordHash, "newsesame42"))
		for _, tok := range f.tokens {
			assert.True(t, tok.Revoked)
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newFakeUoW()
		userID := seedActiveUser(t, f, "ada@example.com", "opensesame")
		svc := newAuthCommands(f)

		err := svc.ChangePassword(ctx, userID, "wrong-pass", "newsesame42")
		assert.ErrorIs(t, err, commands.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFakeUoW()
		svc := newAuthCommands(f)

		err := svc.ChangePassword(ctx, uuid.New(), "opensesame", "newsesame42")
		assert.ErrorIs(t, err, commands.ErrUserNotFound)
	})
}
