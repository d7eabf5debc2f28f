package commands

import (
	"context"
	"log/slog"

	"aurelia-commerce/internal/domain/authtoken"
	"aurelia-commerce/internal/domain/user"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/pkg/clock"
	"aurelia-commerce/internal/pkg/config"
	"aurelia-commerce/internal/pkg/errs"
	"aurelia-commerce/internal/pkg/jwt"
	"aurelia-commerce/internal/pkg/password"
	"aurelia-commerce/internal/pkg/token"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials   = errs.New("invalid email or password")
	ErrEmailAlreadyExists   = errs.New("email already exists")
	ErrUserNotFound         = errs.New("user not found")
	ErrAccountInactive      = errs.New("account is deactivated")
	ErrInvalidRefreshToken  = errs.New("invalid refresh token")
	ErrRefreshTokenExpired  = errs.New("refresh token expired")
	ErrRefreshTokenIdle     = errs.New("refresh token idle too long")
	ErrRefreshTokenReused   = errs.New("refresh token reuse detected")
	ErrTokenGenerationError = errs.New("failed to generate token")
)

type RegisterInput struct {
	Email    string
	Password string
	// SessionID carries the guest cart to merge once the account exists.
	SessionID *string
}

type LoginInput struct {
	Email     string
	Password  string
	SessionID *string
	DeviceID  *string
}

type AuthResult struct {
	UserID       uuid.UUID
	Email        string
	Role         user.Role
	AccessToken  string
	RefreshToken string
}

type AuthCommands interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Refresh(ctx context.Context, rawRefreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, rawRefreshToken string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

type authCommandsImpl struct {
	uow   shared.UnitOfWork
	jwt   *jwt.Service
	clock clock.Clock
	carts CartCommands
	cfg   config.JWTConfig
}

func NewAuthCommands(uow shared.UnitOfWork, jwtSvc *jwt.Service, clk clock.Clock, carts CartCommands, cfg config.JWTConfig) AuthCommands {
	return &authCommandsImpl{
		uow:   uow,
		jwt:   jwtSvc,
		clock: clk,
		carts: carts,
		cfg:   cfg,
	}
}

func (s *authCommandsImpl) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email, err := user.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	pw, err := user.NewPassword(in.Password)
	if err != nil {
		return nil, err
	}
	hash, err := password.HashPassword(pw.Value())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGenerationError)
	}

	var result *AuthResult
	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		userID, err := tx.Users().Create(ctx, shared.NewUser{
			Email:        email.Value(),
			PasswordHash: hash,
			Role:         user.RoleCustomer.String(),
		})
		if err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrEmailAlreadyExists
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		result, err = s.issueTokens(ctx, tx, shared.UserSnapshot{
			ID:       userID,
			Email:    email.Value(),
			Role:     user.RoleCustomer.String(),
			IsActive: true,
		}, nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.mergeGuestCart(ctx, in.SessionID, result.UserID)
	return result, nil
}

func (s *authCommandsImpl) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email, err := user.NewEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	snapshot, err := s.uow.Reads().UserByEmail(ctx, email.Value())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !snapshot.IsActive {
		return nil, ErrAccountInactive
	}
	if err := password.ComparePassword(snapshot.PasswordHash, in.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	var result *AuthResult
	err = s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		result, err = s.issueTokens(ctx, tx, *snapshot, in.DeviceID)
		if err != nil {
			return err
		}
		// Audit timestamp only; a failure must not abort the login.
		if err := tx.Users().UpdateLastLogin(ctx, snapshot.ID); err != nil {
			slog.Warn("failed to update last login", "user_id", snapshot.ID, "error", err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mergeGuestCart(ctx, in.SessionID, snapshot.ID)
	return result, nil
}

// Refresh rotates a presented refresh token. A token that was already
// rotated or revoked is treated as stolen; the whole family is revoked and
// the caller must re-authenticate.
func (s *authCommandsImpl) Refresh(ctx context.Context, rawRefreshToken string) (*AuthResult, error) {
	if rawRefreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	hash := token.Hash(rawRefreshToken)

	// Denials that also revoke set denied and return nil from the closure
	// so the transaction commits; a returned error would roll the
	// revocation back.
	var result *AuthResult
	var denied error
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		current, err := tx.Reads().RefreshTokenByHash(ctx, hash)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrInvalidRefreshToken
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		now := s.clock.Now()
		switch authtoken.Evaluate(current, now, s.cfg.RefreshIdleTimeout) {
		case authtoken.OutcomeReuse:
			revoked, revokeErr := tx.RefreshTokens().RevokeFamily(ctx, current.FamilyID)
			if revokeErr != nil {
				return errs.Mark(revokeErr, ErrDatabaseOperationFailed)
			}
			slog.Warn("refresh token reuse detected, family revoked",
				"user_id", current.UserID, "family_id", current.FamilyID, "tokens_revoked", revoked)
			denied = ErrRefreshTokenReused
			return nil
		case authtoken.OutcomeExpired:
			if revokeErr := tx.RefreshTokens().Revoke(ctx, current.ID); revokeErr != nil {
				return errs.Mark(revokeErr, ErrDatabaseOperationFailed)
			}
			denied = ErrRefreshTokenExpired
			return nil
		case authtoken.OutcomeIdle:
			if revokeErr := tx.RefreshTokens().Revoke(ctx, current.ID); revokeErr != nil {
				return errs.Mark(revokeErr, ErrDatabaseOperationFailed)
			}
			denied = ErrRefreshTokenIdle
			return nil
		}

		snapshot, err := tx.Reads().UserByID(ctx, current.UserID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrInvalidRefreshToken
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !snapshot.IsActive {
			if _, revokeErr := tx.RefreshTokens().RevokeAllForUser(ctx, snapshot.ID); revokeErr != nil {
				return errs.Mark(revokeErr, ErrDatabaseOperationFailed)
			}
			denied = ErrAccountInactive
			return nil
		}
		if snapshot.Role != current.Role {
			// The access token claims would carry a role the user was not
			// issued this session. Force a fresh login instead.
			if revokeErr := tx.RefreshTokens().Revoke(ctx, current.ID); revokeErr != nil {
				return errs.Mark(revokeErr, ErrDatabaseOperationFailed)
			}
			denied = ErrAccountInactive
			return nil
		}

		newRaw, err := token.NewValue()
		if err != nil {
			return errs.Mark(err, ErrTokenGenerationError)
		}
		next := authtoken.Rotate(current, token.Hash(newRaw), now, s.cfg.RefreshTokenDuration)
		if err := tx.RefreshTokens().Insert(ctx, next); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := tx.RefreshTokens().MarkReplaced(ctx, current.ID, next.ID, now); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		access, err := s.accessTokenFor(*snapshot)
		if err != nil {
			return err
		}
		role, _ := user.NewRole(snapshot.Role)
		result = &AuthResult{
			UserID:       snapshot.ID,
			Email:        snapshot.Email,
			Role:         role,
			AccessToken:  access,
			RefreshToken: newRaw,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if denied != nil {
		return nil, denied
	}
	return result, nil
}

// Logout revokes the presented token's whole family, ending the session on
// that device. Unknown tokens are ignored so logout stays idempotent.
func (s *authCommandsImpl) Logout(ctx context.Context, rawRefreshToken string) error {
	if rawRefreshToken == "" {
		return nil
	}
	hash := token.Hash(rawRefreshToken)

	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		current, err := tx.Reads().RefreshTokenByHash(ctx, hash)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if _, err := tx.RefreshTokens().RevokeFamily(ctx, current.FamilyID); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

func (s *authCommandsImpl) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	pw, err := user.NewPassword(next)
	if err != nil {
		return err
	}

	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snapshot, err := tx.Reads().UserByID(ctx, userID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrUserNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if err := password.ComparePassword(snapshot.PasswordHash, current); err != nil {
			return ErrInvalidCredentials
		}

		hash, err := password.HashPassword(pw.Value())
		if err != nil {
			return errs.Mark(err, ErrTokenGenerationError)
		}
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		// Every outstanding session dies with the old password.
		if _, err := tx.RefreshTokens().RevokeAllForUser(ctx, userID); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
}

// issueTokens mints an access token and the root of a new refresh family.
func (s *authCommandsImpl) issueTokens(ctx context.Context, tx shared.Tx, snapshot shared.UserSnapshot, deviceID *string) (*AuthResult, error) {
	access, err := s.accessTokenFor(snapshot)
	if err != nil {
		return nil, err
	}

	rawRefresh, err := token.NewValue()
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGenerationError)
	}
	now := s.clock.Now()
	record := authtoken.New(snapshot.ID, token.Hash(rawRefresh), uuid.New(), deviceID, snapshot.Role, now, s.cfg.RefreshTokenDuration)
	if err := tx.RefreshTokens().Insert(ctx, record); err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	role, _ := user.NewRole(snapshot.Role)
	return &AuthResult{
		UserID:       snapshot.ID,
		Email:        snapshot.Email,
		Role:         role,
		AccessToken:  access,
		RefreshToken: rawRefresh,
	}, nil
}

func (s *authCommandsImpl) accessTokenFor(snapshot shared.UserSnapshot) (string, error) {
	role, err := user.NewRole(snapshot.Role)
	if err != nil {
		return "", errs.Mark(err, ErrTokenGenerationError)
	}
	access, err := s.jwt.GenerateAccessToken(snapshot.ID, snapshot.Email, role)
	if err != nil {
		return "", errs.Mark(err, ErrTokenGenerationError)
	}
	return access, nil
}

// mergeGuestCart folds the pre-login guest cart into the account cart.
// Best effort: a merge failure never fails the login itself.
func (s *authCommandsImpl) mergeGuestCart(ctx context.Context, sessionID *string, userID uuid.UUID) {
	if sessionID == nil || *sessionID == "" {
		return
	}
	if err := s.carts.MergeGuestCart(ctx, *sessionID, userID); err != nil {
		slog.Warn("guest cart merge failed", "user_id", userID, "error", err.Error())
	}
}
