package repository

import (
	"context"
	"time"

	"aurelia-commerce/internal/domain/authtoken"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/infra/db"

	"github.com/google/uuid"
)

// RefreshTokenRepository only ever flips revocation flags; rows are never
// deleted so a revoked token presented again still trips reuse detection.
type RefreshTokenRepository struct {
	db db.DBTX
}

func NewRefreshTokenRepository(dbtx db.DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: dbtx}
}

const insertRefreshTokenQuery = `
INSERT INTO refresh_tokens (
    id, user_id, token_hash, family_id, device_id, role,
    revoked, replaced_by, created_at, expires_at, last_used_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

func (r *RefreshTokenRepository) Insert(ctx context.Context, t *authtoken.Token) error {
	_, err := r.db.Exec(ctx, insertRefreshTokenQuery,
		t.ID, t.UserID, t.TokenHash, t.FamilyID, t.DeviceID, t.Role,
		t.Revoked, t.ReplacedBy, t.CreatedAt, t.ExpiresAt, t.LastUsedAt,
	)
	if err != nil {
		return infra.WrapPgErr("failed to insert refresh token", err)
	}
	return nil
}

const markReplacedQuery = `
UPDATE refresh_tokens
SET revoked = TRUE,
    replaced_by = $2,
    last_used_at = $3
WHERE id = $1
`

func (r *RefreshTokenRepository) MarkReplaced(ctx context.Context, oldID, newID uuid.UUID, usedAt time.Time) error {
	tag, err := r.db.Exec(ctx, markReplacedQuery, oldID, newID, usedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to mark token replaced", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("refresh token not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to revoke refresh token", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("refresh token not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeFamily(ctx context.Context, familyID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE family_id = $1 AND NOT revoked`, familyID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to revoke token family", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND NOT revoked`, userID)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to revoke user tokens", err)
	}
	return tag.RowsAffected(), nil
}
