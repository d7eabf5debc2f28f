package commands

import (
	"context"
	"log/slog"

	"aurelia-commerce/internal/domain/cart"
	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/pkg/clock"
	"aurelia-commerce/internal/pkg/config"
	"aurelia-commerce/internal/pkg/errs"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound    = errs.New("product not found")
	ErrProductUnavailable = errs.New("product unavailable")
	ErrInsufficientStock  = errs.New("insufficient stock")
	ErrCartNotFound       = errs.New("cart not found")
	ErrCartLineNotFound   = errs.New("cart item not found")
	ErrInvalidQuantity    = errs.New("invalid quantity")
	ErrInvalidCartOwner   = errs.New("cart owner must be a user or a session")
)

type CartCommands interface {
	AddItem(ctx context.Context, owner shared.CartOwner, productID uuid.UUID, quantity int) (*cart.Cart, error)
	UpdateItem(ctx context.Context, owner shared.CartOwner, productID uuid.UUID, quantity int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, owner shared.CartOwner, productID uuid.UUID) (*cart.Cart, error)
	MergeGuestCart(ctx context.Context, sessionID string, userID uuid.UUID) error
}

type cartCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	cfg   config.CartConfig
}

func NewCartCommands(uow shared.UnitOfWork, clk clock.Clock, cfg config.CartConfig) CartCommands {
	return &cartCommandsImpl{
		uow:   uow,
		clock: clk,
		cfg:   cfg,
	}
}

func (s *cartCommandsImpl) pricing() cart.Pricing {
	return cart.Pricing{
		FreeShippingThresholdCents: s.cfg.FreeShippingThresholdCents,
		FlatShippingCents:          s.cfg.FlatShippingCents,
		TaxRateBps:                 s.cfg.TaxRateBps,
		TaxEnabled:                 s.cfg.TaxEnabled,
	}
}

func (s *cartCommandsImpl) AddItem(ctx context.Context, owner shared.CartOwner, productID uuid.UUID, quantity int) (*cart.Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidCartOwner
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var result *cart.Cart
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		product, err := s.sellableProduct(ctx, tx, productID)
		if err != nil {
			return err
		}

		c, err := s.loadOrCreateCart(ctx, tx, owner)
		if err != nil {
			return err
		}

		// Reserve before touching the cart: a failed hold must leave the
		// line untouched so the client can retry with a smaller quantity.
		if product.Inventory.TrackQuantity {
			if err := s.reserve(ctx, tx, product.ID, quantity); err != nil {
				return err
			}
		}

		if _, err := c.AddLine(lineFromProduct(product, quantity)); err != nil {
			return errs.Mark(err, ErrInvalidQuantity)
		}
		c.Recalculate(s.pricing())

		if err := tx.Carts().Save(ctx, c); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *cartCommandsImpl) UpdateItem(ctx context.Context, owner shared.CartOwner, productID uuid.UUID, quantity int) (*cart.Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidCartOwner
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	var result *cart.Cart
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		c, err := s.loadCart(ctx, tx, owner)
		if err != nil {
			return err
		}
		line, ok := c.Line(productID)
		if !ok {
			return ErrCartLineNotFound
		}

		product, err := s.sellableProduct(ctx, tx, productID)
		if err != nil {
			return err
		}

		delta := quantity - line.Quantity
		if product.Inventory.TrackQuantity {
			switch {
			case delta > 0:
				if err := s.reserve(ctx, tx, product.ID, delta); err != nil {
					return err
				}
			case delta < 0:
				s.release(ctx, tx, product.ID, -delta)
			}
		}

		_, removed, err := c.SetQuantity(productID, quantity)
		if err != nil {
			return errs.Mark(err, ErrInvalidQuantity)
		}
		if !removed {
			c.RepriceLine(productID, product.PriceCents, s.cfg.PriceDriftPercent)
		}
		c.Recalculate(s.pricing())

		if err := tx.Carts().Save(ctx, c); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *cartCommandsImpl) RemoveItem(ctx context.Context, owner shared.CartOwner, productID uuid.UUID) (*cart.Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidCartOwner
	}

	var result *cart.Cart
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		c, err := s.loadCart(ctx, tx, owner)
		if err != nil {
			return err
		}

		released, err := c.RemoveLine(productID)
		if err != nil {
			return errs.Mark(err, ErrCartLineNotFound)
		}

		product, err := tx.Reads().ProductByID(ctx, productID)
		if err == nil && product.Inventory.TrackQuantity {
			s.release(ctx, tx, productID, released)
		}

		c.Recalculate(s.pricing())
		if err := tx.Carts().Save(ctx, c); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		result = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MergeGuestCart reconciles a guest cart into the user's cart at login.
// Overlapping products sum quantities and take the live price; guest-only
// lines survive only while their product is still active. Reservations made
// under the guest session stay as they are.
func (s *cartCommandsImpl) MergeGuestCart(ctx context.Context, sessionID string, userID uuid.UUID) error {
	return s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		guest, err := tx.Reads().CartForOwner(ctx, shared.OwnerForSession(sessionID))
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		userCart, err := tx.Reads().CartForOwner(ctx, shared.OwnerForUser(userID))
		if err != nil && !infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if userCart == nil {
			// Ownership transfer: relabel the guest cart after dropping
			// lines whose product went inactive.
			s.filterInactiveLines(ctx, tx, guest)
			id := userID
			guest.UserID = &id
			guest.SessionID = nil
			guest.ExpiresAt = nil
			guest.Recalculate(s.pricing())
			return tx.Carts().Save(ctx, guest)
		}

		for _, guestLine := range guest.Lines {
			product, err := tx.Reads().ProductByID(ctx, guestLine.ProductID)
			if err != nil || !product.IsAvailable() {
				continue // inactive products are dropped silently
			}
			if existing, ok := userCart.Line(guestLine.ProductID); ok {
				existing.Quantity += guestLine.Quantity
				existing.PriceCents = product.PriceCents
				existing.SubtotalCents = existing.PriceCents * int64(existing.Quantity)
			} else {
				if _, err := userCart.AddLine(guestLine); err != nil {
					return errs.Mark(err, ErrDatabaseOperationFailed)
				}
			}
		}
		userCart.Recalculate(s.pricing())

		if err := tx.Carts().Save(ctx, userCart); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		return tx.Carts().Delete(ctx, guest.ID)
	})
}

func (s *cartCommandsImpl) filterInactiveLines(ctx context.Context, tx shared.Tx, c *cart.Cart) {
	kept := c.Lines[:0]
	for _, l := range c.Lines {
		product, err := tx.Reads().ProductByID(ctx, l.ProductID)
		if err == nil && product.IsAvailable() {
			kept = append(kept, l)
		}
	}
	c.Lines = kept
}

func (s *cartCommandsImpl) sellableProduct(ctx context.Context, tx shared.Tx, productID uuid.UUID) (*catalog.Product, error) {
	product, err := tx.Reads().ProductByID(ctx, productID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !product.IsAvailable() {
		return nil, ErrProductUnavailable
	}
	return product, nil
}

func (s *cartCommandsImpl) loadCart(ctx context.Context, tx shared.Tx, owner shared.CartOwner) (*cart.Cart, error) {
	c, err := tx.Reads().CartForOwner(ctx, owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return c, nil
}

func (s *cartCommandsImpl) loadOrCreateCart(ctx context.Context, tx shared.Tx, owner shared.CartOwner) (*cart.Cart, error) {
	c, err := tx.Reads().CartForOwner(ctx, owner)
	if err == nil {
		return c, nil
	}
	if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if owner.UserID != nil {
		return cart.NewForUser(*owner.UserID, s.cfg.Currency), nil
	}
	return cart.NewForSession(*owner.SessionID, s.cfg.Currency, s.clock.Now().Add(s.cfg.GuestTTL)), nil
}

func (s *cartCommandsImpl) reserve(ctx context.Context, tx shared.Tx, productID uuid.UUID, qty int) error {
	prev, next, err := tx.Stock().Reserve(ctx, productID, qty)
	if err != nil {
		var insufficient *catalog.InsufficientStockError
		if errs.As(err, &insufficient) {
			return errs.Mark(err, ErrInsufficientStock)
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	entry := &catalog.InventoryLog{
		ID:               uuid.New(),
		ProductID:        productID,
		Type:             catalog.LogTypeReserved,
		Quantity:         qty,
		PreviousQuantity: prev.ReservedQuantity,
		NewQuantity:      next.ReservedQuantity,
		CreatedAt:        s.clock.Now(),
	}
	if err := tx.Stock().AppendLog(ctx, entry); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

// release is a compensating action; failures are logged, never propagated,
// so cleanup can never block the primary cart mutation.
func (s *cartCommandsImpl) release(ctx context.Context, tx shared.Tx, productID uuid.UUID, qty int) {
	prev, next, err := tx.Stock().Release(ctx, productID, qty)
	if err != nil {
		slog.Warn("failed to release reserved stock", "product_id", productID, "quantity", qty, "error", err.Error())
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
		slog.Warn("failed to log stock release", "product_id", productID, "error", err.Error())
	}
}

func lineFromProduct(p *catalog.Product, quantity int) cart.Line {
	return cart.Line{
		ProductID:  p.ID,
		SKU:        p.SKU,
		Title:      p.Title,
		ImageURL:   p.ImageURL,
		PriceCents: p.PriceCents,
		Quantity:   quantity,
	}
}
