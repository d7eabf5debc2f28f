package repository

import (
	"context"
	"time"

	"aurelia-commerce/internal/domain/cart"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/infra/db"

	"github.com/google/uuid"
)

type CartRepository struct {
	db db.DBTX
}

func NewCartRepository(dbtx db.DBTX) *CartRepository {
	return &CartRepository{db: dbtx}
}

const upsertCartQuery = `
INSERT INTO carts (
    id, user_id, session_id,
    subtotal_cents, tax_cents, shipping_cents, discount_cents, total_cents,
    currency, expires_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
ON CONFLICT (id) DO UPDATE SET
    user_id        = EXCLUDED.user_id,
    session_id     = EXCLUDED.session_id,
    subtotal_cents = EXCLUDED.subtotal_cents,
    tax_cents      = EXCLUDED.tax_cents,
    shipping_cents = EXCLUDED.shipping_cents,
    discount_cents = EXCLUDED.discount_cents,
    total_cents    = EXCLUDED.total_cents,
    currency       = EXCLUDED.currency,
    expires_at     = EXCLUDED.expires_at,
    updated_at     = now()
`

const insertCartLineQuery = `
INSERT INTO cart_lines (
    cart_id, product_id, sku, title, image_url, price_cents, quantity, subtotal_cents
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// Save upserts the cart header and rewrites its lines wholesale. Line-level
// diffing is not worth the bookkeeping at cart sizes.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	_, err := r.db.Exec(ctx, upsertCartQuery,
		c.ID, c.UserID, c.SessionID,
		c.SubtotalCents, c.TaxCents, c.ShippingCents, c.DiscountCents, c.TotalCents,
		c.Currency, c.ExpiresAt, c.CreatedAt,
	)
	if err != nil {
		return infra.WrapPgErr("failed to save cart", err)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, c.ID); err != nil {
		return infra.WrapRepoErr("failed to clear cart lines", err)
	}
	for _, l := range c.Lines {
		_, err := r.db.Exec(ctx, insertCartLineQuery,
			c.ID, l.ProductID, l.SKU, l.Title, l.ImageURL,
			l.PriceCents, l.Quantity, l.SubtotalCents,
		)
		if err != nil {
			return infra.WrapPgErr("failed to save cart line", err)
		}
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id); err != nil {
		return infra.WrapRepoErr("failed to delete cart", err)
	}
	return nil
}

const expiredCartsQuery = `
SELECT id, user_id, session_id,
       subtotal_cents, tax_cents, shipping_cents, discount_cents, total_cents,
       currency, expires_at, created_at, updated_at
FROM carts
WHERE expires_at IS NOT NULL AND expires_at < $1
ORDER BY expires_at
LIMIT $2
FOR UPDATE SKIP LOCKED
`

// ExpiredCarts pages ripe guest carts for the reaper. SKIP LOCKED keeps
// concurrent reapers from fighting over the same rows.
func (r *CartRepository) ExpiredCarts(ctx context.Context, now time.Time, limit int32) ([]*cart.Cart, error) {
	rows, err := r.db.Query(ctx, expiredCartsQuery, now, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query expired carts", err)
	}
	defer rows.Close()

	var carts []*cart.Cart
	for rows.Next() {
		var c cart.Cart
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.SessionID,
			&c.SubtotalCents, &c.TaxCents, &c.ShippingCents, &c.DiscountCents, &c.TotalCents,
			&c.Currency, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan expired cart", err)
		}
		carts = append(carts, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate expired carts", err)
	}

	for _, c := range carts {
		lines, err := loadCartLines(ctx, r.db, c.ID)
		if err != nil {
			return nil, err
		}
		c.Lines = lines
	}
	return carts, nil
}

func loadCartLines(ctx context.Context, dbtx db.DBTX, cartID uuid.UUID) ([]cart.Line, error) {
	rows, err := dbtx.Query(ctx, `
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
