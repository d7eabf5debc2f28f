package catalog

import (
	"time"

	"github.com/google/uuid"
)

type LogType string

const (
	LogTypeSale       LogType = "sale"
	LogTypeRestock    LogType = "restock"
	LogTypeAdjustment LogType = "adjustment"
	LogTypeReturn     LogType = "return"
	LogTypeReserved   LogType = "reserved"
	LogTypeReleased   LogType = "released"
)

// InventoryLog is an append-only mutation record. Rows are never updated or
// deleted; IdempotencyKey carries a unique constraint so a duplicate write
// with the same key fails instead of silently succeeding.
type InventoryLog struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	Type             LogType
	Quantity         int // signed delta
	PreviousQuantity int
	NewQuantity      int
	Reason           *string
	OrderID          *uuid.UUID
	UserID           *uuid.UUID
	IdempotencyKey   *string
	CreatedAt        time.Time
}

// Consistent returns whether the delta arithmetic holds. The repository
// builds entries from the same UPDATE that moved the counters, so a false
// here indicates a programming error, not bad data.
func (l InventoryLog) Consistent() bool {
	return l.NewQuantity == l.PreviousQuantity+l.Quantity
}
