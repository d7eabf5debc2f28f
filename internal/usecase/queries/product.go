package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProductFilter struct {
	// Status filters to a single status; empty means active only for the
	// storefront and everything for admins.
	Status string
	Search string
}

type ProductQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
	List(ctx context.Context, filter ProductFilter, after *Cursor, limit int) ([]*ProductListItem, *Cursor, error)
	StockLogs(ctx context.Context, productID uuid.UUID, after *Cursor, limit int) ([]*InventoryLogView, *Cursor, error)
	// LowStock lists tracked products at or under their threshold. Unpaginated;
	// the result is bounded by catalog size and meant for an ops dashboard.
	LowStock(ctx context.Context) ([]*LowStockItem, error)
}

type ProductViewRepo interface {
	FindViewByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
	ListFirstPage(ctx context.Context, filter ProductFilter, limit int32) ([]*ProductListItem, error)
	ListKeyset(ctx context.Context, filter ProductFilter, afterCreatedAt time.Time, afterID uuid.UUID, limit int32) ([]*ProductListItem, error)
	LogsFirstPage(ctx context.Context, productID uuid.UUID, limit int32) ([]*InventoryLogView, error)
	LogsKeyset(ctx context.Context, productID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int32) ([]*InventoryLogView, error)
	ListLowStock(ctx context.Context) ([]*LowStockItem, error)
}

type productQueriesImpl struct {
	repo ProductViewRepo
}

func NewProductQueries(repo ProductViewRepo) ProductQueries {
	return &productQueriesImpl{repo: repo}
}

func (q *productQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	return q.repo.FindViewByID(ctx, id)
}

func (q *productQueriesImpl) List(ctx context.Context, filter ProductFilter, after *Cursor, limit int) ([]*ProductListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		rows []*ProductListItem
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = q.repo.ListFirstPage(ctx, filter, int32(limit))
	} else {
		createdAt, id, decErr := DecodeAfterCursor(after.After)
		if decErr != nil {
			return nil, nil, decErr
		}
		rows, err = q.repo.ListKeyset(ctx, filter, createdAt, id, int32(limit))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) == limit {
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return rows, next, nil
}

func (q *productQueriesImpl) LowStock(ctx context.Context) ([]*LowStockItem, error) {
	return q.repo.ListLowStock(ctx)
}

func (q *productQueriesImpl) StockLogs(ctx context.Context, productID uuid.UUID, after *Cursor, limit int) ([]*InventoryLogView, *Cursor, error) {
	limit = ValidateLimit(limit)

	var (
		rows []*InventoryLogView
		err  error
	)
	if after == nil || after.After == "" {
		rows, err = q.repo.LogsFirstPage(ctx, productID, int32(limit))
	} else {
		createdAt, id, decErr := DecodeAfterCursor(after.After)
		if decErr != nil {
			return nil, nil, decErr
		}
		rows, err = q.repo.LogsKeyset(ctx, productID, createdAt, id, int32(limit))
	}
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(rows) == limit {
		last := rows[len(rows)-1]
		next = &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	}
	return rows, next, nil
}
