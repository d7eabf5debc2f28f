package readstore

import (
	"context"
	"encoding/json"
	"time"

	"aurelia-commerce/internal/domain/order"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/infra/db"
	"aurelia-commerce/internal/pkg/pgconv"
	"aurelia-commerce/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(dbtx db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: dbtx}
}

const orderColumns = `
id, user_id, number, status, payment_status,
shipping_address, billing_address, payment_method, idempotency_key,
subtotal_cents, tax_cents, shipping_cents, discount_cents, total_cents,
currency, customer_notes, shipped_at, delivered_at, created_at, updated_at
`

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *OrderReadStore) FindByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*order.Order, error) {
	return r.findOne(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND idempotency_key = $2`,
		userID, key)
}

func (r *OrderReadStore) findOne(ctx context.Context, query string, args ...any) (*order.Order, error) {
	var (
		o                 order.Order
		status            string
		paymentStatus     string
		shippingJSON      []byte
		billingJSON       []byte
	)
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&o.ID, &o.UserID, &o.Number, &status, &paymentStatus,
		&shippingJSON, &billingJSON, &o.PaymentMethod, &o.IdempotencyKey,
		&o.SubtotalCents, &o.TaxCents, &o.ShippingCents, &o.DiscountCents, &o.TotalCents,
		&o.Currency, &o.CustomerNotes, &o.ShippedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}
	o.Status = order.Status(status)
	o.PaymentStatus = order.PaymentStatus(paymentStatus)

	if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
		return nil, infra.WrapRepoErr("failed to decode shipping address", err)
	}
	if err := json.Unmarshal(billingJSON, &o.BillingAddress); err != nil {
		return nil, infra.WrapRepoErr("failed to decode billing address", err)
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *OrderReadStore) loadItems(ctx context.Context, orderID uuid.UUID) ([]order.Item, error) {
	rows, err := r.db.Query(ctx, `
SELECT product_id, sku, title, image_url, price_cents, quantity, subtotal_cents
FROM order_items
WHERE order_id = $1
ORDER BY product_id`, orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query order items", err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ProductID, &it.SKU, &it.Title, &it.ImageURL, &it.PriceCents, &it.Quantity, &it.SubtotalCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order items", err)
	}
	return items, nil
}

func (r *OrderReadStore) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	o, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return orderToView(o)
}

func orderToView(o *order.Order) (*queries.OrderView, error) {
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to encode shipping address", err)
	}
	billing, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to encode billing address", err)
	}

	items := make([]queries.OrderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, queries.OrderItemView{
			ProductID:     it.ProductID,
			SKU:           it.SKU,
			Title:         it.Title,
			ImageURL:      it.ImageURL,
			PriceCents:    it.PriceCents,
			Quantity:      it.Quantity,
			SubtotalCents: it.SubtotalCents,
		})
	}
	return &queries.OrderView{
		ID:              o.ID,
		UserID:          o.UserID,
		Number:          o.Number,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		Items:           items,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		PaymentMethod:   o.PaymentMethod,
		SubtotalCents:   o.SubtotalCents,
		TaxCents:        o.TaxCents,
		ShippingCents:   o.ShippingCents,
		DiscountCents:   o.DiscountCents,
		TotalCents:      o.TotalCents,
		Currency:        o.Currency,
		CustomerNotes:   o.CustomerNotes,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

const orderListSelect = `
SELECT o.id, o.number, o.status, o.total_cents, o.currency,
       (SELECT count(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count,
       o.created_at
FROM orders o
`

func (r *OrderReadStore) ListByUserFirstPage(ctx context.Context, userID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx,
		orderListSelect+` WHERE o.user_id = $1 ORDER BY o.created_at DESC, o.id DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	return scanOrderListItems(rows)
}

func (r *OrderReadStore) ListByUserKeyset(ctx context.Context, userID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx,
		orderListSelect+` WHERE o.user_id = $1 AND (o.created_at, o.id) < ($2, $3) ORDER BY o.created_at DESC, o.id DESC LIMIT $4`,
		userID, afterCreatedAt, afterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders keyset", err)
	}
	return scanOrderListItems(rows)
}

func (r *OrderReadStore) ListAllFirstPage(ctx context.Context, status string, limit int32) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx,
		orderListSelect+` WHERE ($1 = '' OR o.status = $1) ORDER BY o.created_at DESC, o.id DESC LIMIT $2`,
		status, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list all orders", err)
	}
	return scanOrderListItems(rows)
}

func (r *OrderReadStore) ListAllKeyset(ctx context.Context, status string, afterCreatedAt time.Time, afterID uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	rows, err := r.db.Query(ctx,
		orderListSelect+` WHERE ($1 = '' OR o.status = $1) AND (o.created_at, o.id) < ($2, $3) ORDER BY o.created_at DESC, o.id DESC LIMIT $4`,
		status, afterCreatedAt, afterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list all orders keyset", err)
	}
	return scanOrderListItems(rows)
}

func scanOrderListItems(rows pgx.Rows) ([]*queries.OrderListItem, error) {
	defer rows.Close()

	var result []*queries.OrderListItem
	for rows.Next() {
		var item queries.OrderListItem
		if err := rows.Scan(&item.ID, &item.Number, &item.Status, &item.TotalCents, &item.Currency, &item.ItemCount, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list item", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order list", err)
	}
	return result, nil
}
