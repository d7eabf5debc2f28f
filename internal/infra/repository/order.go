package repository

import (
	"context"
	"encoding/json"

	"aurelia-commerce/internal/domain/order"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/infra/db"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

const createOrderQuery = `
INSERT INTO orders (
    id, user_id, number, status, payment_status,
    shipping_address, billing_address, payment_method, idempotency_key,
    subtotal_cents, tax_cents, shipping_cents, discount_cents, total_cents,
    currency, customer_notes, created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5,
    $6, $7, $8, $9,
    $10, $11, $12, $13, $14,
    $15, $16, $17, $18
)
`

const createOrderItemQuery = `
INSERT INTO order_items (
    order_id, product_id, sku, title, image_url, price_cents, quantity, subtotal_cents
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return infra.WrapRepoErr("failed to encode shipping address", err)
	}
	billing, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return infra.WrapRepoErr("failed to encode billing address", err)
	}

	_, err = r.db.Exec(ctx, createOrderQuery,
		o.ID, o.UserID, o.Number, string(o.Status), string(o.PaymentStatus),
		shipping, billing, o.PaymentMethod, o.IdempotencyKey,
		o.SubtotalCents, o.TaxCents, o.ShippingCents, o.DiscountCents, o.TotalCents,
		o.Currency, o.CustomerNotes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return infra.WrapPgErr("failed to create order", err)
	}

	for _, item := range o.Items {
		_, err = r.db.Exec(ctx, createOrderItemQuery,
			o.ID, item.ProductID, item.SKU, item.Title, item.ImageURL,
			item.PriceCents, item.Quantity, item.SubtotalCents,
		)
		if err != nil {
			return infra.WrapPgErr("failed to create order item", err)
		}
	}
	return nil
}

const updateOrderStatusQuery = `
UPDATE orders
SET status = $2,
    payment_status = $3,
    shipped_at = $4,
    delivered_at = $5,
    updated_at = now()
WHERE id = $1
`

func (r *OrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	tag, err := r.db.Exec(ctx, updateOrderStatusQuery,
		o.ID, string(o.Status), string(o.PaymentStatus), o.ShippedAt, o.DeliveredAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return nil
}
