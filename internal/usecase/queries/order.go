package queries

import (
	"context"
	"time"

	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrOrderNotVisible = errs.New("order not found")

type OrderQueries interface {
	// GetByID hides other users' orders from non-admin actors.
	GetByID(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID) (*OrderView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
	ListAll(ctx context.Context, status string, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
}

type OrderViewRepo interface {
	FindViewByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	ListByUserFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*OrderListItem, error)
	ListByUserKeyset(ctx context.Context, userID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int32) ([]*OrderListItem, error)
	ListAllFirstPage(ctx context.Context, status string, limit int32) ([]*OrderListItem, error)
	ListAllKeyset(ctx context.Context, status string, afterCreatedAt time.Time, afterID uuid.UUID, limit int32) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID) (*OrderView, error) {
	view, err := q.repo.FindViewByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotVisible
		}
		return nil, err
	}
	if actorRole != "admin" && view.UserID != actorID {
		return nil, ErrOrderNotVisible
	}
	return view, nil
}

func (q *orderQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		rows []*OrderListItem
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = q.repo.ListByUserFirstPage(ctx, userID, int32(limit))
	} else {
		createdAt, id, decErr := DecodeAfterCursor(after.After)
		if decErr != nil {
			return nil, nil, decErr
		}
		rows, err = q.repo.ListByUserKeyset(ctx, userID, createdAt, id, int32(limit))
	}
	if err != nil {
		return nil, nil, err
	}
	return rows, nextCursor(rows, limit), nil
}

func (q *orderQueriesImpl) ListAll(ctx context.Context, status string, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		rows []*OrderListItem
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = q.repo.ListAllFirstPage(ctx, status, int32(limit))
	} else {
		createdAt, id, decErr := DecodeAfterCursor(after.After)
		if decErr != nil {
			return nil, nil, decErr
		}
		rows, err = q.repo.ListAllKeyset(ctx, status, createdAt, id, int32(limit))
	}
	if err != nil {
		return nil, nil, err
	}
	return rows, nextCursor(rows, limit), nil
}

func nextCursor(rows []*OrderListItem, limit int) *Cursor {
	if len(rows) < limit {
		return nil
	}
	last := rows[len(rows)-1]
	return &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
}
