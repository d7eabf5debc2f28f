// Package catalog holds the product record and its stock ledger counters.
// Stock mutation itself happens through conditional repository updates; the
// types here carry the invariants those updates must preserve.
package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDeleted:
		return true
	default:
		return false
	}
}

// Inventory is the per-product stock ledger head. reservedQuantity may exceed
// quantity when backorder is allowed; AvailableQuantity is the canonical
// sellable figure and never goes negative. Quantity itself may go negative
// after a backorder-allowed sale commit.
type Inventory struct {
	Quantity          int
	ReservedQuantity  int
	LowStockThreshold int
	TrackQuantity     bool
	AllowBackorder    bool
	Location          string
}

func (i Inventory) AvailableQuantity() int {
	available := i.Quantity - i.ReservedQuantity
	if available < 0 {
		return 0
	}
	return available
}

func (i Inventory) CanReserve(quantity int) bool {
	if !i.TrackQuantity {
		return true
	}
	if i.AllowBackorder {
		return true
	}
	return i.AvailableQuantity() >= quantity
}

func (i Inventory) IsLowStock() bool {
	return i.TrackQuantity && i.Quantity <= i.LowStockThreshold
}

type Product struct {
	ID          uuid.UUID
	SKU         string
	Title       string
	Description string
	PriceCents  int64
	ImageURL    string
	Status      Status
	Inventory   Inventory
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) IsAvailable() bool {
	return p.Status == StatusActive
}

// InsufficientStockError reports the available count so the caller can show
// an actionable message without a second read.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}
