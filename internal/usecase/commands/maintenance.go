package commands

import (
	"context"
	"log/slog"

	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/pkg/clock"
	"aurelia-commerce/internal/pkg/errs"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

const reaperBatchSize = 100

type MaintenanceCommands interface {
	// ReapExpiredCarts deletes one batch of expired guest carts, releasing
	// their reservation holds first. Returns the number of carts removed.
	ReapExpiredCarts(ctx context.Context) (int, error)
}

type maintenanceCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewMaintenanceCommands(uow shared.UnitOfWork, clk clock.Clock) MaintenanceCommands {
	return &maintenanceCommandsImpl{
		uow:   uow,
		clock: clk,
	}
}

func (s *maintenanceCommandsImpl) ReapExpiredCarts(ctx context.Context) (int, error) {
	reaped := 0
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		carts, err := tx.Carts().ExpiredCarts(ctx, s.clock.Now(), reaperBatchSize)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		for _, c := range carts {
			for _, line := range c.Lines {
				s.releaseLine(ctx, tx, line.ProductID, line.Quantity)
			}
			if err := tx.Carts().Delete(ctx, c.ID); err != nil {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
			reaped++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return reaped, nil
}

func (s *maintenanceCommandsImpl) releaseLine(ctx context.Context, tx shared.Tx, productID uuid.UUID, qty int) {
	product, err := tx.Reads().ProductByID(ctx, productID)
	if err != nil {
		if !infra.IsKind(err, infra.KindNotFound) {
			slog.Warn("reaper could not load product", "product_id", productID, "error", err.Error())
		}
		return
	}
	if !product.Inventory.TrackQuantity {
		return
	}

	prev, next, err := tx.Stock().Release(ctx, productID, qty)
	if err != nil {
		slog.Warn("reaper failed to release hold", "product_id", productID, "quantity", qty, "error", err.Error())
		return
	}
	entry := &catalog.InventoryLog{
		ID:               uuid.New(),
		ProductID:        productID,
		Type:             catalog.LogTypeReleased,
		Quantity:         next.ReservedQuantity - prev.ReservedQuantity,
		PreviousQuantity: prev.ReservedQuantity,
		NewQuantity:      next.ReservedQuantity,
		CreatedAt:        s.clock.Now(),
	}
	if err := tx.Stock().AppendLog(ctx, entry); err != nil {
		slog.Warn("reaper failed to log release", "product_id", productID, "error", err.Error())
	}
}
