// Package cart models the cart aggregate: denormalized line items plus the
// derived totals. Every mutation goes through Recalculate so the totals
// invariant (subtotal = sum of line subtotals, total = subtotal + tax +
// shipping - discount) holds regardless of operation order.
package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrQuantityNotPositive = errors.New("quantity must be positive")
	ErrLineNotFound        = errors.New("cart line not found")
)

// Line carries a product snapshot taken at add-to-cart time. Price is only
// refreshed when the live price drifts past the configured threshold.
type Line struct {
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	Title         string    `json:"title"`
	ImageURL      string    `json:"image_url"`
	PriceCents    int64     `json:"price_cents"`
	Quantity      int       `json:"quantity"`
	SubtotalCents int64     `json:"subtotal_cents"`
}

// Cart is keyed by UserID (permanent) XOR SessionID (guest, TTL-expiring).
type Cart struct {
	ID            uuid.UUID
	UserID        *uuid.UUID
	SessionID     *string
	Lines         []Line
	SubtotalCents int64
	TaxCents      int64
	ShippingCents int64
	DiscountCents int64
	TotalCents    int64
	Currency      string
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NewForUser(userID uuid.UUID, currency string) *Cart {
	id := userID
	return &Cart{
		ID:       uuid.New(),
		UserID:   &id,
		Currency: currency,
	}
}

func NewForSession(sessionID string, currency string, expiresAt time.Time) *Cart {
	return &Cart{
		ID:        uuid.New(),
		SessionID: &sessionID,
		Currency:  currency,
		ExpiresAt: &expiresAt,
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) Line(productID uuid.UUID) (*Line, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// AddLine merges into an existing line for the same product or appends a new
// one. Returns the resulting quantity for that product.
func (c *Cart) AddLine(line Line) (int, error) {
	if line.Quantity <= 0 {
		return 0, ErrQuantityNotPositive
	}
	if existing, ok := c.Line(line.ProductID); ok {
		existing.Quantity += line.Quantity
		existing.SubtotalCents = existing.PriceCents * int64(existing.Quantity)
		return existing.Quantity, nil
	}
	line.SubtotalCents = line.PriceCents * int64(line.Quantity)
	c.Lines = append(c.Lines, line)
	return line.Quantity, nil
}

// SetQuantity replaces a line's quantity and returns the signed delta against
// the previous value. Quantity zero removes the line.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) (delta int, removed bool, err error) {
	if quantity < 0 {
		return 0, false, ErrQuantityNotPositive
	}
	line, ok := c.Line(productID)
	if !ok {
		return 0, false, ErrLineNotFound
	}
	delta = quantity - line.Quantity
	if quantity == 0 {
		c.removeLine(productID)
		return delta, true, nil
	}
	line.Quantity = quantity
	line.SubtotalCents = line.PriceCents * int64(line.Quantity)
	return delta, false, nil
}

// RemoveLine drops the line and returns the quantity that was held by it.
func (c *Cart) RemoveLine(productID uuid.UUID) (int, error) {
	line, ok := c.Line(productID)
	if !ok {
		return 0, ErrLineNotFound
	}
	released := line.Quantity
	c.removeLine(productID)
	return released, nil
}

func (c *Cart) removeLine(productID uuid.UUID) {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}

// RepriceLine resets a line to the live price when the drift exceeds
// driftPercent of the cart price. Returns whether a reprice happened.
func (c *Cart) RepriceLine(productID uuid.UUID, liveCents int64, driftPercent int64) bool {
	line, ok := c.Line(productID)
	if !ok {
		return false
	}
	if !PriceDrifted(line.PriceCents, liveCents, driftPercent) {
		return false
	}
	line.PriceCents = liveCents
	line.SubtotalCents = liveCents * int64(line.Quantity)
	return true
}

func PriceDrifted(cartCents, liveCents, driftPercent int64) bool {
	if cartCents <= 0 {
		return liveCents != cartCents
	}
	diff := liveCents - cartCents
	if diff < 0 {
		diff = -diff
	}
	return diff*100 > cartCents*driftPercent
}

// Clear empties the lines and zeroes the totals, keeping the row itself so
// order placement can blank the cart inside its transaction.
func (c *Cart) Clear() {
	c.Lines = nil
	c.SubtotalCents = 0
	c.TaxCents = 0
	c.ShippingCents = 0
	c.DiscountCents = 0
	c.TotalCents = 0
}
