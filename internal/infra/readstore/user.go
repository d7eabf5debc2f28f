package readstore

import (
	"context"

	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/infra/db"
	"aurelia-commerce/internal/pkg/pgconv"
	"aurelia-commerce/internal/usecase/queries"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(dbtx db.DBTX) *UserReadStore {
	return &UserReadStore{db: dbtx}
}

const userSnapshotColumns = `id, email, password_hash, role, is_active`

func (r *UserReadStore) SnapshotByID(ctx context.Context, id uuid.UUID) (*shared.UserSnapshot, error) {
	return r.snapshot(ctx, `SELECT `+userSnapshotColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserReadStore) SnapshotByEmail(ctx context.Context, email string) (*shared.UserSnapshot, error) {
	return r.snapshot(ctx, `SELECT `+userSnapshotColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserReadStore) snapshot(ctx context.Context, query string, arg any) (*shared.UserSnapshot, error) {
	var s shared.UserSnapshot
	err := r.db.QueryRow(ctx, query, arg).Scan(&s.ID, &s.Email, &s.PasswordHash, &s.Role, &s.IsActive)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}
	return &s, nil
}

func (r *UserReadStore) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.UserView, error) {
	var v queries.UserView
	err := r.db.QueryRow(ctx,
		`SELECT id, email, role, is_active, last_login_at, created_at FROM users WHERE id = $1`, id,
	).Scan(&v.ID, &v.Email, &v.Role, &v.IsActive, &v.LastLoginAt, &v.CreatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user view", err)
	}
	return &v, nil
}
