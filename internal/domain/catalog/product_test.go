//go:build unit

package catalog_test

import (
	"testing"

	"aurelia-commerce/internal/domain/catalog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestInventory_AvailableQuantity(t *testing.T) {
	assert.Equal(t, 7, catalog.Inventory{Quantity: 10, ReservedQuantity: 3}.AvailableQuantity())
	assert.Equal(t, 0, catalog.Inventory{Quantity: 3, ReservedQuantity: 5}.AvailableQuantity())
	assert.Equal(t, 0, catalog.Inventory{Quantity: -2, ReservedQuantity: 0}.AvailableQuantity())
}

func TestInventory_CanReserve(t *testing.T) {
	t.Run("untracked stock always reserves", func(t *testing.T) {
		inv := catalog.Inventory{TrackQuantity: false}
		assert.True(t, inv.CanReserve(1000))
	})

	t.Run("backorder bypasses the availability check", func(t *testing.T) {
		inv := catalog.Inventory{Quantity: 1, TrackQuantity: true, AllowBackorder: true}
		assert.True(t, inv.CanReserve(50))
	})

	t.Run("tracked stock caps at available", func(t *testing.T) {
		inv := catalog.Inventory{Quantity: 10, ReservedQuantity: 4, TrackQuantity: true}
		assert.True(t, inv.CanReserve(6))
		assert.False(t, inv.CanReserve(7))
	})
}

func TestInventory_IsLowStock(t *testing.T) {
	assert.True(t, catalog.Inventory{Quantity: 2, LowStockThreshold: 5, TrackQuantity: true}.IsLowStock())
	assert.True(t, catalog.Inventory{Quantity: 5, LowStockThreshold: 5, TrackQuantity: true}.IsLowStock())
	assert.False(t, catalog.Inventory{Quantity: 6, LowStockThreshold: 5, TrackQuantity: true}.IsLowStock())
	assert.False(t, catalog.Inventory{Quantity: 0, LowStockThreshold: 5, TrackQuantity: false}.IsLowStock())
}

func TestProduct_IsAvailable(t *testing.T) {
	assert.True(t, (&catalog.Product{Status: catalog.StatusActive}).IsAvailable())
	assert.False(t, (&catalog.Product{Status: catalog.StatusInactive}).IsAvailable())
	assert.False(t, (&catalog.Product{Status: catalog.StatusDeleted}).IsAvailable())
}

func TestInventoryLog_Consistent(t *testing.T) {
	ok := catalog.InventoryLog{Quantity: -3, PreviousQuantity: 10, NewQuantity: 7}
	assert.True(t, ok.Consistent())

	bad := catalog.InventoryLog{Quantity: -3, PreviousQuantity: 10, NewQuantity: 8}
	assert.False(t, bad.Consistent())
}

func TestInsufficientStockError(t *testing.T) {
	id := uuid.New()
	err := &catalog.InsufficientStockError{ProductID: id, Requested: 5, Available: 2}
	assert.Contains(t, err.Error(), id.String())
	assert.Contains(t, err.Error(), "requested 5")
	assert.Contains(t, err.Error(), "available 2")
}
