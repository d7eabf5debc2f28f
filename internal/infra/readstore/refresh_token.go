package readstore

import (
	"context"

	"aurelia-commerce/internal/domain/authtoken"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/infra/db"
	"aurelia-commerce/internal/pkg/pgconv"
)

type RefreshTokenReadStore struct {
	db db.DBTX
}

func NewRefreshTokenReadStore(dbtx db.DBTX) *RefreshTokenReadStore {
	return &RefreshTokenReadStore{db: dbtx}
}

const refreshTokenByHashQuery = `
SELECT id, user_id, token_hash, family_id, device_id, role,
       revoked, replaced_by, created_at, expires_at, last_used_at
FROM refresh_tokens
WHERE token_hash = $1
`

func (r *RefreshTokenReadStore) FindByHash(ctx context.Context, hash string) (*authtoken.Token, error) {
	var t authtoken.Token
	err := r.db.QueryRow(ctx, refreshTokenByHashQuery, hash).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.FamilyID, &t.DeviceID, &t.Role,
		&t.Revoked, &t.ReplacedBy, &t.CreatedAt, &t.ExpiresAt, &t.LastUsedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("refresh token not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find refresh token", err)
	}
	return &t, nil
}
