// Package order models the immutable order written at checkout: a frozen
// snapshot of the cart decoupled from live product data, plus a constrained
// status machine and shipping metadata.
package order

import (
	"time"

	"aurelia-commerce/internal/domain/cart"

	"github.com/google/uuid"
)

type Item struct {
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	PriceCents    int64     `json:"price_cents"`
	Quantity      int       `json:"quantity"`
	SubtotalCents int64     `json:"subtotal_cents"`
}

type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Number          string
	Status          Status
	PaymentStatus   PaymentStatus
	Items           []Item
	ShippingAddress Address
	BillingAddress  Address
	PaymentMethod   string
	IdempotencyKey  *string
	SubtotalCents   int64
	TaxCents        int64
	ShippingCents   int64
	DiscountCents   int64
	TotalCents      int64
	Currency        string
	CustomerNotes   *string
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FromCart freezes the cart into a new pending order. Line prices and titles
// are copied, not referenced, so later product edits never touch the order.
func FromCart(userID uuid.UUID, c *cart.Cart, number string, shipping, billing Address, paymentMethod string, idempotencyKey *string, notes *string) *Order {
	items := make([]Item, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, Item{
			ProductID:     l.ProductID,
			SKU:           l.SKU,
			Title:         l.Title,
			ImageURL:      l.ImageURL,
			PriceCents:    l.PriceCents,
			Quantity:      l.Quantity,
			SubtotalCents: l.SubtotalCents,
		})
	}
	return &Order{
		ID:              uuid.New(),
		UserID:          userID,
		Number:          number,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		Items:           items,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		PaymentMethod:   paymentMethod,
		IdempotencyKey:  idempotencyKey,
		SubtotalCents:   c.SubtotalCents,
		TaxCents:        c.TaxCents,
		ShippingCents:   c.ShippingCents,
		DiscountCents:   c.DiscountCents,
		TotalCents:      c.TotalCents,
		Currency:        c.Currency,
		CustomerNotes:   notes,
	}
}

// ApplyTransition moves the order to the next status, stamping the audited
// timestamps on the way through.
func (o *Order) ApplyTransition(to Status, now time.Time) error {
	if !CanTransition(o.Status, to) {
		return ErrInvalidTransition
	}
	o.Status = to
	switch to {
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusRefunded:
		o.PaymentStatus = PaymentRefunded
	}
	return nil
}
