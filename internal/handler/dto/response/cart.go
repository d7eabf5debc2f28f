package response

import (
	"time"

	"aurelia-commerce/internal/domain/cart"

	"github.com/google/uuid"
)

type CartLineResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	PriceCents    int64     `json:"price_cents"`
	Quantity      int       `json:"quantity"`
	SubtotalCents int64     `json:"subtotal_cents"`
}

type CartResponse struct {
	ID            uuid.UUID          `json:"id"`
	Lines         []CartLineResponse `json:"lines"`
	SubtotalCents int64              `json:"subtotal_cents"`
	TaxCents      int64              `json:"tax_cents"`
	ShippingCents int64              `json:"shipping_cents"`
	DiscountCents int64              `json:"discount_cents"`
	TotalCents    int64              `json:"total_cents"`
	Currency      string             `json:"currency"`
	ExpiresAt     *time.Time         `json:"expires_at,omitempty"`
}

func FromCart(c *cart.Cart) CartResponse {
	lines := make([]CartLineResponse, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, CartLineResponse{
			ProductID:     l.ProductID,
			SKU:           l.SKU,
			Title:         l.Title,
			ImageURL:      l.ImageURL,
			PriceCents:    l.PriceCents,
			Quantity:      l.Quantity,
			SubtotalCents: l.SubtotalCents,
		})
	}
	return CartResponse{
		ID:            c.ID,
		Lines:         lines,
		SubtotalCents: c.SubtotalCents,
		TaxCents:      c.TaxCents,
		ShippingCents: c.ShippingCents,
		DiscountCents: c.DiscountCents,
		TotalCents:    c.TotalCents,
		Currency:      c.Currency,
		ExpiresAt:     c.ExpiresAt,
	}
}
