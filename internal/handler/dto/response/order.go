package response

import (
	"time"

	"aurelia-commerce/internal/domain/order"
	"aurelia-commerce/internal/usecase/queries"

	"github.com/google/uuid"
)

type OrderItemResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	PriceCents    int64     `json:"price_cents"`
	Quantity      int       `json:"quantity"`
	SubtotalCents int64     `json:"subtotal_cents"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"number"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	Items           []OrderItemResponse `json:"items"`
	ShippingAddress order.Address       `json:"shipping_address"`
	BillingAddress  order.Address       `json:"billing_address"`
	PaymentMethod   string              `json:"payment_method"`
	SubtotalCents   int64               `json:"subtotal_cents"`
	TaxCents        int64               `json:"tax_cents"`
	ShippingCents   int64               `json:"shipping_cents"`
	DiscountCents   int64               `json:"discount_cents"`
	TotalCents      int64               `json:"total_cents"`
	Currency        string              `json:"currency"`
	CustomerNotes   *string             `json:"customer_notes,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

func FromOrder(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:     it.ProductID,
			SKU:           it.SKU,
			Title:         it.Title,
			ImageURL:      it.ImageURL,
			PriceCents:    it.PriceCents,
			Quantity:      it.Quantity,
			SubtotalCents: it.SubtotalCents,
		})
	}
	return OrderResponse{
		ID:              o.ID,
		Number:          o.Number,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PaymentMethod:   o.PaymentMethod,
		SubtotalCents:   o.SubtotalCents,
		TaxCents:        o.TaxCents,
		ShippingCents:   o.ShippingCents,
		DiscountCents:   o.DiscountCents,
		TotalCents:      o.TotalCents,
		Currency:        o.Currency,
		CustomerNotes:   o.CustomerNotes,
		CreatedAt:       o.CreatedAt,
	}
}

type CheckoutResponse struct {
	Order    OrderResponse `json:"order"`
	Replayed bool          `json:"replayed"`
}

type OrderListResponse struct {
	Orders     []*queries.OrderListItem `json:"orders"`
	NextCursor *string                  `json:"next_cursor,omitempty"`
}

type ProductListResponse struct {
	Products   []*queries.ProductListItem `json:"products"`
	NextCursor *string                    `json:"next_cursor,omitempty"`
}

type InventoryLogListResponse struct {
	Logs       []*queries.InventoryLogView `json:"logs"`
	NextCursor *string                     `json:"next_cursor,omitempty"`
}

func CursorString(c *queries.Cursor) *string {
	if c == nil || c.After == "" {
		return nil
	}
	return &c.After
}
