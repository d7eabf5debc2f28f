package readstore

import (
	"context"

	"aurelia-commerce/internal/domain/cart"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/infra/db"
	"aurelia-commerce/internal/pkg/pgconv"
	"aurelia-commerce/internal/usecase/queries"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(dbtx db.DBTX) *CartReadStore {
	return &CartReadStore{db: dbtx}
}

const cartByOwnerQuery = `
SELECT id, user_id, session_id,
       subtotal_cents, tax_cents, shipping_cents, discount_cents, total_cents,
       currency, expires_at, created_at, updated_at
FROM carts
WHERE ($1::uuid IS NOT NULL AND user_id = $1)
   OR ($2::text IS NOT NULL AND session_id = $2)
`

// FindForOwner returns the domain cart for the write path.
func (r *CartReadStore) FindForOwner(ctx context.Context, owner shared.CartOwner) (*cart.Cart, error) {
	if !owner.Valid() {
		return nil, infra.WrapRepoErr("cart owner must be a user or a session", nil, infra.KindNotFound)
	}

	var c cart.Cart
	err := r.db.QueryRow(ctx, cartByOwnerQuery, owner.UserID, owner.SessionID).Scan(
		&c.ID, &c.UserID, &c.SessionID,
		&c.SubtotalCents, &c.TaxCents, &c.ShippingCents, &c.DiscountCents, &c.TotalCents,
		&c.Currency, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart", err)
	}

	lines, err := r.loadLines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Lines = lines
	return &c, nil
}

func (r *CartReadStore) loadLines(ctx context.Context, cartID uuid.UUID) ([]cart.Line, error) {
	rows, err := r.db.Query(ctx, `
SELECT product_id, sku, title, image_url, price_cents, quantity, subtotal_cents
FROM cart_lines
WHERE cart_id = $1
ORDER BY product_id`, cartID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query cart lines", err)
	}
	defer rows.Close()

	var lines []cart.Line
	for rows.Next() {
		var l cart.Line
		if err := rows.Scan(&l.ProductID, &l.SKU, &l.Title, &l.ImageURL, &l.PriceCents, &l.Quantity, &l.SubtotalCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart lines", err)
	}
	return lines, nil
}

const cartViewLinesQuery = `
SELECT cl.product_id, cl.sku, cl.title, cl.image_url,
       cl.price_cents, p.price_cents, cl.quantity, cl.subtotal_cents
FROM cart_lines cl
JOIN products p ON p.id = cl.product_id
WHERE cl.cart_id = $1
ORDER BY cl.product_id
`

// FindViewForOwner joins each line against the live product price so the
// client can flag drift before checkout.
func (r *CartReadStore) FindViewForOwner(ctx context.Context, owner shared.CartOwner) (*queries.CartView, error) {
	c, err := r.FindForOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, cartViewLinesQuery, c.ID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query cart view lines", err)
	}
	defer rows.Close()

	view := &queries.CartView{
		ID:            c.ID,
		SubtotalCents: c.SubtotalCents,
		TaxCents:      c.TaxCents,
		ShippingCents: c.ShippingCents,
		DiscountCents: c.DiscountCents,
		TotalCents:    c.TotalCents,
		Currency:      c.Currency,
		ExpiresAt:     c.ExpiresAt,
		UpdatedAt:     c.UpdatedAt,
	}
	for rows.Next() {
		var l queries.CartLineView
		if err := rows.Scan(
			&l.ProductID, &l.SKU, &l.Title, &l.ImageURL,
			&l.PriceCents, &l.CurrentPriceCents, &l.Quantity, &l.SubtotalCents,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart view line", err)
		}
		l.PriceChanged = l.CurrentPriceCents != l.PriceCents
		view.Lines = append(view.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart view lines", err)
	}
	return view, nil
}
