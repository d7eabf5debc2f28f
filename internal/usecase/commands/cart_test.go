//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/pkg/clock"
	"aurelia-commerce/internal/pkg/config"
	"aurelia-commerce/internal/usecase/commands"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func testCartConfig() config.CartConfig {
	return config.NewTestConfig().Cart
}

func newCartCommands(f *fakeUoW) commands.CartCommands {
	return commands.NewCartCommands(f, clock.NewMockClock(testTime), testCartConfig())
}

func activeProduct(priceCents int64, quantity int) catalog.Product {
	return catalog.Product{
		ID:         uuid.New(),
		SKU:        "SKU-" + uuid.New().String()[:8],
		Title:      "Silver Pendant",
		PriceCents: priceCents,
		Status:     catalog.StatusActive,
		Inventory: catalog.Inventory{
			Quantity:      quantity,
			TrackQuantity: true,
		},
	}
}

func TestCartCommands_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a guest cart and reserves stock", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 10))
		svc := newCartCommands(f)

		result, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), p.ID, 3)
		require.NoError(t, err)

		require.Len(t, result.Lines, 1)
		assert.Equal(t, 3, result.Lines[0].Quantity)
		assert.Equal(t, int64(7500), result.SubtotalCents)
		require.NotNil(t, result.ExpiresAt)

		assert.Equal(t, 3, f.products[p.ID].Inventory.ReservedQuantity)

		logs := f.logsOfType(catalog.LogTypeReserved)
		require.Len(t, logs, 1)
		assert.Equal(t, 3, logs[0].Quantity)
		assert.Equal(t, 0, logs[0].PreviousQuantity)
		assert.Equal(t, 3, logs[0].NewQuantity)
		assert.True(t, logs[0].Consistent())
	})

	t.Run("merges into an existing cart line", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 10))
		svc := newCartCommands(f)

		_, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), p.ID, 2)
		require.NoError(t, err)
		result, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), p.ID, 3)
		require.NoError(t, err)

		require.Len(t, result.Lines, 1)
		assert.Equal(t, 5, result.Lines[0].Quantity)
		assert.Equal(t, 5, f.products[p.ID].Inventory.ReservedQuantity)
	})

	t.Run("insufficient stock leaves no hold and no cart", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 2))
		svc := newCartCommands(f)

		_, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), p.ID, 3)
		assert.ErrorIs(t, err, commands.ErrInsufficientStock)

		assert.Equal(t, 0, f.products[p.ID].Inventory.ReservedQuantity)
		assert.Empty(t, f.carts)
	})

	t.Run("backorder allows overselling the hold", func(t *testing.T) {
		f := newFakeUoW()
		p := activeProduct(2500, 1)
		p.Inventory.AllowBackorder = true
		stored := f.addProduct(p)
		svc := newCartCommands(f)

		_, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), stored.ID, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, f.products[stored.ID].Inventory.ReservedQuantity)
	})

	t.Run("untracked product skips the hold", func(t *testing.T) {
		f := newFakeUoW()
		p := activeProduct(2500, 0)
		p.Inventory.TrackQuantity = false
		stored := f.addProduct(p)
		svc := newCartCommands(f)

		_, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), stored.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 0, f.products[stored.ID].Inventory.ReservedQuantity)
		assert.Empty(t, f.logsOfType(catalog.LogTypeReserved))
	})

	t.Run("inactive product", func(t *testing.T) {
		f := newFakeUoW()
		p := activeProduct(2500, 10)
		p.Status = catalog.StatusInactive
		stored := f.addProduct(p)
		svc := newCartCommands(f)

		_, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), stored.ID, 1)
		assert.ErrorIs(t, err, commands.ErrProductUnavailable)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := newFakeUoW()
		svc := newCartCommands(f)

		_, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), uuid.New(), 1)
		assert.ErrorIs(t, err, commands.ErrProductNotFound)
	})

	t.Run("invalid quantity and owner", func(t *testing.T) {
		f := newFakeUoW()
		svc := newCartCommands(f)

		_, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), uuid.New(), 0)
		assert.ErrorIs(t, err, commands.ErrInvalidQuantity)

		_, err = svc.AddItem(ctx, shared.CartOwner{}, uuid.New(), 1)
		assert.ErrorIs(t, err, commands.ErrInvalidCartOwner)
	})
}

func TestCartCommands_UpdateItem(t *testing.T) {
	ctx := context.Background()
	owner := shared.OwnerForSession("sess-1")

	seed := func(t *testing.T, quantity int, stock int) (*fakeUoW, commands.CartCommands, uuid.UUID) {
		t.Helper()
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, stock))
		svc := newCartCommands(f)
		_, err := svc.AddItem(ctx, owner, p.ID, quantity)
		require.NoError(t, err)
		return f, svc, p.ID
	}

	t.Run("increase reserves only the delta", func(t *testing.T) {
		f, svc, productID := seed(t, 2, 10)

		result, err := svc.UpdateItem(ctx, owner, productID, 6)
		require.NoError(t, err)

		assert.Equal(t, 6, result.Lines[0].Quantity)
		assert.Equal(t, 6, f.products[productID].Inventory.ReservedQuantity)
	})

	t.Run("decrease releases the delta", func(t *testing.T) {
		f, svc, productID := seed(t, 5, 10)

		result, err := svc.UpdateItem(ctx, owner, productID, 2)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Lines[0].Quantity)
		assert.Equal(t, 2, f.products[productID].Inventory.ReservedQuantity)
		require.Len(t, f.logsOfType(catalog.LogTypeReleased), 1)
	})

	t.Run("zero removes the line and releases the hold", func(t *testing.T) {
		f, svc, productID := seed(t, 4, 10)

		result, err := svc.UpdateItem(ctx, owner, productID, 0)
		require.NoError(t, err)

		assert.True(t, result.IsEmpty())
		assert.Equal(t, 0, f.products[productID].Inventory.ReservedQuantity)
	})

	t.Run("insufficient stock on the delta", func(t *testing.T) {
		f, svc, productID := seed(t, 2, 3)

		_, err := svc.UpdateItem(ctx, owner, productID, 5)
		assert.ErrorIs(t, err, commands.ErrInsufficientStock)
		// The original hold survives
		assert.Equal(t, 2, f.products[productID].Inventory.ReservedQuantity)
	})

	t.Run("reprices past the drift threshold", func(t *testing.T) {
		f, svc, productID := seed(t, 2, 10)
		f.products[productID].PriceCents = 3500 // 40% over the snapshot

		result, err := svc.UpdateItem(ctx, owner, productID, 3)
		require.NoError(t, err)

		assert.Equal(t, int64(3500), result.Lines[0].PriceCents)
		assert.Equal(t, int64(10500), result.Lines[0].SubtotalCents)
	})

	t.Run("keeps the snapshot inside the drift window", func(t *testing.T) {
		f, svc, productID := seed(t, 2, 10)
		f.products[productID].PriceCents = 2600 // 4% over

		result, err := svc.UpdateItem(ctx, owner, productID, 3)
		require.NoError(t, err)

		assert.Equal(t, int64(2500), result.Lines[0].PriceCents)
	})

	t.Run("line not in cart", func(t *testing.T) {
		f, svc, _ := seed(t, 2, 10)
		other := f.addProduct(activeProduct(1000, 5))

		_, err := svc.UpdateItem(ctx, owner, other.ID, 1)
		assert.ErrorIs(t, err, commands.ErrCartLineNotFound)
	})

	t.Run("no cart for owner", func(t *testing.T) {
		f := newFakeUoW()
		svc := newCartCommands(f)

		_, err := svc.UpdateItem(ctx, owner, uuid.New(), 1)
		assert.ErrorIs(t, err, commands.ErrCartNotFound)
	})
}

func TestCartCommands_RemoveItem(t *testing.T) {
	ctx := context.Background()
	owner := shared.OwnerForSession("sess-1")

	t.Run("releases the hold and recalculates", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 10))
		svc := newCartCommands(f)
		_, err := svc.AddItem(ctx, owner, p.ID, 3)
		require.NoError(t, err)

		result, err := svc.RemoveItem(ctx, owner, p.ID)
		require.NoError(t, err)

		assert.True(t, result.IsEmpty())
		assert.Zero(t, result.TotalCents)
		assert.Equal(t, 0, f.products[p.ID].Inventory.ReservedQuantity)
	})

	t.Run("unknown line", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 10))
		svc := newCartCommands(f)
		_, err := svc.AddItem(ctx, owner, p.ID, 1)
		require.NoError(t, err)

		_, err = svc.RemoveItem(ctx, owner, uuid.New())
		assert.ErrorIs(t, err, commands.ErrCartLineNotFound)
	})
}

func TestCartCommands_MergeGuestCart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("relabels the guest cart when the user has none", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 10))
		svc := newCartCommands(f)
		_, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), p.ID, 2)
		require.NoError(t, err)

		require.NoError(t, svc.MergeGuestCart(ctx, "sess-1", userID))

		merged := f.cartForOwner(shared.OwnerForUser(userID))
		require.NotNil(t, merged)
		assert.Nil(t, merged.SessionID)
		assert.Nil(t, merged.ExpiresAt)
		require.Len(t, merged.Lines, 1)
		assert.Equal(t, 2, merged.Lines[0].Quantity)
		assert.Nil(t, f.cartForOwner(shared.OwnerForSession("sess-1")))
	})

	t.Run("sums overlapping lines at the live price", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 20))
		svc := newCartCommands(f)
		_, err := svc.AddItem(ctx, shared.OwnerForUser(userID), p.ID, 2)
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, shared.OwnerForSession("sess-1"), p.ID, 3)
		require.NoError(t, err)

		f.products[p.ID].PriceCents = 3000

		require.NoError(t, svc.MergeGuestCart(ctx, "sess-1", userID))

		merged := f.cartForOwner(shared.OwnerForUser(userID))
		require.NotNil(t, merged)
		require.Len(t, merged.Lines, 1)
		assert.Equal(t, 5, merged.Lines[0].Quantity)
		assert.Equal(t, int64(3000), merged.Lines[0].PriceCents)
		assert.Equal(t, int64(15000), merged.Lines[0].SubtotalCents)
		assert.Nil(t, f.cartForOwner(shared.OwnerForSession("sess-1")))
	})

	t.Run("drops lines whose product went inactive", func(t *testing.T) {
		f := newFakeUoW()
		live := f.addProduct(activeProduct(2500, 10))
		dying := f.addProduct(activeProduct(5000, 10))
		svc := newCartCommands(f)
		_, err := svc.AddItem(ctx, shared.OwnerForSession("sess-1"), live.ID, 1)
		require.NoError(t, err)
		_, err = svc.AddItem(ctx, shared.OwnerForSession("sess-1"), dying.ID, 1)
		require.NoError(t, err)

		f.products[dying.ID].Status = catalog.StatusInactive

		require.NoError(t, svc.MergeGuestCart(ctx, "sess-1", userID))

		merged := f.cartForOwner(shared.OwnerForUser(userID))
		require.NotNil(t, merged)
		require.Len(t, merged.Lines, 1)
		assert.Equal(t, live.ID, merged.Lines[0].ProductID)
	})

	t.Run("no-op without a guest cart", func(t *testing.T) {
		f := newFakeUoW()
		svc := newCartCommands(f)

		assert.NoError(t, svc.MergeGuestCart(ctx, "sess-none", userID))
	})
}
