package queries

import (
	"context"

	"aurelia-commerce/internal/usecase/shared"
)

type CartQueries interface {
	// GetForOwner returns the cart with live prices alongside the captured
	// ones so clients can surface drift before checkout.
	GetForOwner(ctx context.Context, owner shared.CartOwner) (*CartView, error)
}

type CartViewRepo interface {
	FindViewForOwner(ctx context.Context, owner shared.CartOwner) (*CartView, error)
}

type cartQueriesImpl struct {
	repo CartViewRepo
}

func NewCartQueries(repo CartViewRepo) CartQueries {
	return &cartQueriesImpl{repo: repo}
}

func (q *cartQueriesImpl) GetForOwner(ctx context.Context, owner shared.CartOwner) (*CartView, error) {
	return q.repo.FindViewForOwner(ctx, owner)
}
