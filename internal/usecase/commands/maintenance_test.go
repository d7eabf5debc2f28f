//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/pkg/clock"
	"aurelia-commerce/internal/usecase/commands"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceCommands_ReapExpiredCarts(t *testing.T) {
	ctx := context.Background()

	t.Run("releases holds and deletes expired guest carts", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 10))
		carts := newCartCommands(f)
		_, err := carts.AddItem(ctx, shared.OwnerForSession("sess-old"), p.ID, 4)
		require.NoError(t, err)

		expired := f.cartForOwner(shared.OwnerForSession("sess-old"))
		require.NotNil(t, expired)
		past := testTime.Add(-time.Hour)
		expired.ExpiresAt = &past

		svc := commands.NewMaintenanceCommands(f, clock.NewMockClock(testTime))
		reaped, err := svc.ReapExpiredCarts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, reaped)

		assert.Nil(t, f.cartForOwner(shared.OwnerForSession("sess-old")))
		assert.Equal(t, 0, f.products[p.ID].Inventory.ReservedQuantity)

		releases := f.logsOfType(catalog.LogTypeReleased)
		require.Len(t, releases, 1)
		assert.Equal(t, -4, releases[0].Quantity)
		assert.Equal(t, 4, releases[0].PreviousQuantity)
		assert.Equal(t, 0, releases[0].NewQuantity)
	})

	t.Run("leaves live guest carts alone", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 10))
		carts := newCartCommands(f)
		_, err := carts.AddItem(ctx, shared.OwnerForSession("sess-live"), p.ID, 2)
		require.NoError(t, err)

		svc := commands.NewMaintenanceCommands(f, clock.NewMockClock(testTime))
		reaped, err := svc.ReapExpiredCarts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, reaped)

		assert.NotNil(t, f.cartForOwner(shared.OwnerForSession("sess-live")))
		assert.Equal(t, 2, f.products[p.ID].Inventory.ReservedQuantity)
	})

	t.Run("user carts never expire", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 10))
		carts := newCartCommands(f)
		_, err := carts.AddItem(ctx, shared.OwnerForUser(uuid.New()), p.ID, 2)
		require.NoError(t, err)

		svc := commands.NewMaintenanceCommands(f, clock.NewMockClock(testTime))
		reaped, err := svc.ReapExpiredCarts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, reaped)
	})

	t.Run("skips holds for products that vanished", func(t *testing.T) {
		f := newFakeUoW()
		p := f.addProduct(activeProduct(2500, 10))
		carts := newCartCommands(f)
		_, err := carts.AddItem(ctx, shared.OwnerForSession("sess-old"), p.ID, 2)
		require.NoError(t, err)

		expired := f.cartForOwner(shared.OwnerForSession("sess-old"))
		past := testTime.Add(-time.Hour)
		expired.ExpiresAt = &past
		delete(f.products, p.ID)

		svc := commands.NewMaintenanceCommands(f, clock.NewMockClock(testTime))
		reaped, err := svc.ReapExpiredCarts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, reaped)
		assert.Empty(t, f.logsOfType(catalog.LogTypeReleased))
	})
}
