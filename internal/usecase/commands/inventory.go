package commands

import (
	"context"

	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/pkg/clock"
	"aurelia-commerce/internal/pkg/errs"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrSKUAlreadyExists = errs.New("sku already exists")
	ErrInvalidAdjust    = errs.New("adjustment delta must be non-zero")
	ErrInvalidStatus    = errs.New("invalid product status")
)

type ProductInput struct {
	SKU         string
	Title       string
	Description string
	PriceCents  int64
	ImageURL    string
	Status      catalog.Status
	Inventory   catalog.Inventory
}

type InventoryCommands interface {
	CreateProduct(ctx context.Context, in ProductInput) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, in ProductInput) (*catalog.Product, error)
	// AdjustStock applies a signed correction to on-hand quantity.
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int, reason string, actorID uuid.UUID) (shared.StockLevels, error)
	Restock(ctx context.Context, productID uuid.UUID, quantity int, reason string, actorID uuid.UUID) (shared.StockLevels, error)
}

type inventoryCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewInventoryCommands(uow shared.UnitOfWork, clk clock.Clock) InventoryCommands {
	return &inventoryCommandsImpl{
		uow:   uow,
		clock: clk,
	}
}

func (s *inventoryCommandsImpl) CreateProduct(ctx context.Context, in ProductInput) (*catalog.Product, error) {
	if !in.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	now := s.clock.Now()
	p := &catalog.Product{
		ID:          uuid.New(),
		SKU:         in.SKU,
		Title:       in.Title,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		ImageURL:    in.ImageURL,
		Status:      in.Status,
		Inventory:   in.Inventory,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Products().Create(ctx, p); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrSKUAlreadyExists
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct overwrites the catalog fields. Stock counters go through the
// ledger operations, never through here: Inventory quantity fields in the
// input are ignored except for the tracking flags and threshold.
func (s *inventoryCommandsImpl) UpdateProduct(ctx context.Context, productID uuid.UUID, in ProductInput) (*catalog.Product, error) {
	if !in.Status.IsValid() {
		return nil, ErrInvalidStatus
	}

	var updated *catalog.Product
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Reads().ProductByID(ctx, productID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrProductNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		p.SKU = in.SKU
		p.Title = in.Title
		p.Description = in.Description
		p.PriceCents = in.PriceCents
		p.ImageURL = in.ImageURL
		p.Status = in.Status
		p.Inventory.LowStockThreshold = in.Inventory.LowStockThreshold
		p.Inventory.TrackQuantity = in.Inventory.TrackQuantity
		p.Inventory.AllowBackorder = in.Inventory.AllowBackorder
		p.Inventory.Location = in.Inventory.Location
		p.UpdatedAt = s.clock.Now()

		if err := tx.Products().Update(ctx, p); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrSKUAlreadyExists
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *inventoryCommandsImpl) AdjustStock(ctx context.Context, productID uuid.UUID, delta int, reason string, actorID uuid.UUID) (shared.StockLevels, error) {
	if delta == 0 {
		return shared.StockLevels{}, ErrInvalidAdjust
	}
	return s.mutate(ctx, productID, catalog.LogTypeAdjustment, delta, reason, actorID,
		func(ctx context.Context, tx shared.Tx) (shared.StockLevels, shared.StockLevels, error) {
			return tx.Stock().Adjust(ctx, productID, delta)
		})
}

func (s *inventoryCommandsImpl) Restock(ctx context.Context, productID uuid.UUID, quantity int, reason string, actorID uuid.UUID) (shared.StockLevels, error) {
	if quantity <= 0 {
		return shared.StockLevels{}, ErrInvalidQuantity
	}
	return s.mutate(ctx, productID, catalog.LogTypeRestock, quantity, reason, actorID,
		func(ctx context.Context, tx shared.Tx) (shared.StockLevels, shared.StockLevels, error) {
			return tx.Stock().Restock(ctx, productID, quantity)
		})
}

func (s *inventoryCommandsImpl) mutate(
	ctx context.Context,
	productID uuid.UUID,
	logType catalog.LogType,
	delta int,
	reason string,
	actorID uuid.UUID,
	op func(ctx context.Context, tx shared.Tx) (shared.StockLevels, shared.StockLevels, error),
) (shared.StockLevels, error) {
	var result shared.StockLevels
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, err := tx.Reads().ProductByID(ctx, productID); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrProductNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		prev, next, err := op(ctx, tx)
		if err != nil {
			var insufficient *catalog.InsufficientStockError
			if errs.As(err, &insufficient) {
				return errs.Mark(err, ErrInsufficientStock)
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		var reasonPtr *string
		if reason != "" {
			reasonPtr = &reason
		}
		entry := &catalog.InventoryLog{
			ID:               uuid.New(),
			ProductID:        productID,
			Type:             logType,
			Quantity:         next.Quantity - prev.Quantity,
			PreviousQuantity: prev.Quantity,
			NewQuantity:      next.Quantity,
			Reason:           reasonPtr,
			UserID:           &actorID,
			CreatedAt:        s.clock.Now(),
		}
		if err := tx.Stock().AppendLog(ctx, entry); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		result = next
		return nil
	})
	if err != nil {
		return shared.StockLevels{}, err
	}
	return result, nil
}
