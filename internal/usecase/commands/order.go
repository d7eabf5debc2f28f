package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/domain/order"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/pkg/clock"
	"aurelia-commerce/internal/pkg/config"
	"aurelia-commerce/internal/pkg/errs"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart               = errs.New("cart is empty")
	ErrOrderNotFound           = errs.New("order not found")
	ErrOrderNotCancellable     = errs.New("order can no longer be cancelled")
	ErrInvalidStatusTransition = errs.New("invalid order status transition")
	ErrIdempotencyCheckFailed  = errs.New("idempotency pre-check failed")
	ErrOrderNumberExhausted    = errs.New("could not allocate a unique order number")
	errConcurrentIdempotentHit = errs.New("idempotency key raced by a concurrent request")
)

const orderNumberAttempts = 5

type CheckoutInput struct {
	ShippingAddress order.Address
	BillingAddress  order.Address
	PaymentMethod   string
	IdempotencyKey  *string
	CustomerNotes   *string
}

type CheckoutResult struct {
	Order *order.Order
	// Replayed reports that a previous order with the same idempotency key
	// was returned instead of placing a new one.
	Replayed bool
}

type OrderCommands interface {
	Checkout(ctx context.Context, userID uuid.UUID, in CheckoutInput) (*CheckoutResult, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error)
	Transition(ctx context.Context, orderID uuid.UUID, to order.Status) (*order.Order, error)
}

type orderCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
	cfg   config.CartConfig
}

func NewOrderCommands(uow shared.UnitOfWork, clk clock.Clock, cfg config.CartConfig) OrderCommands {
	return &orderCommandsImpl{
		uow:   uow,
		clock: clk,
		cfg:   cfg,
	}
}

// Checkout converts the user's cart into an order. The idempotency lookup
// runs before the transaction so replays never touch stock; the unique key
// on (user_id, idempotency_key) backstops the race where two requests with
// the same key pass the lookup simultaneously.
func (s *orderCommandsImpl) Checkout(ctx context.Context, userID uuid.UUID, in CheckoutInput) (*CheckoutResult, error) {
	if in.IdempotencyKey != nil {
		existing, err := s.uow.Reads().OrderByIdempotencyKey(ctx, userID, *in.IdempotencyKey)
		if err == nil {
			return &CheckoutResult{Order: existing, Replayed: true}, nil
		}
		if !infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrIdempotencyCheckFailed)
		}
	}

	var placed *order.Order
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		c, err := tx.Reads().CartForOwner(ctx, shared.OwnerForUser(userID))
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrEmptyCart
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if c.IsEmpty() {
			return ErrEmptyCart
		}

		now := s.clock.Now()
		o := order.FromCart(userID, c, order.NewNumber(now), in.ShippingAddress, in.BillingAddress, in.PaymentMethod, in.IdempotencyKey, in.CustomerNotes)
		o.CreatedAt = now
		o.UpdatedAt = now

		for _, item := range o.Items {
			if err := s.commitLine(ctx, tx, o, item); err != nil {
				return err
			}
		}

		if err := s.createWithFreshNumber(ctx, tx, o); err != nil {
			return err
		}

		if err := s.enqueueConfirmation(ctx, tx, o); err != nil {
			return err
		}

		c.Clear()
		if err := tx.Carts().Save(ctx, c); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		placed = o
		return nil
	})
	if err != nil {
		if errs.Is(err, errConcurrentIdempotentHit) && in.IdempotencyKey != nil {
			winner, readErr := s.uow.Reads().OrderByIdempotencyKey(ctx, userID, *in.IdempotencyKey)
			if readErr != nil {
				return nil, errs.Mark(readErr, ErrIdempotencyCheckFailed)
			}
			return &CheckoutResult{Order: winner, Replayed: true}, nil
		}
		return nil, err
	}
	return &CheckoutResult{Order: placed}, nil
}

// commitLine converts the reservation hold into a sale for one order line.
func (s *orderCommandsImpl) commitLine(ctx context.Context, tx shared.Tx, o *order.Order, item order.Item) error {
	product, err := tx.Reads().ProductByID(ctx, item.ProductID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(errs.Newf("product %s no longer exists", item.ProductID), ErrProductUnavailable)
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !product.IsAvailable() {
		return errs.Mark(errs.Newf("product %q is no longer available", product.Title), ErrProductUnavailable)
	}
	if !product.Inventory.TrackQuantity {
		return nil
	}

	prev, next, err := tx.Stock().CommitSale(ctx, item.ProductID, item.Quantity)
	if err != nil {
		var insufficient *catalog.InsufficientStockError
		if errs.As(err, &insufficient) {
			return errs.Mark(err, ErrInsufficientStock)
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	entry := &catalog.InventoryLog{
		ID:               uuid.New(),
		ProductID:        item.ProductID,
		Type:             catalog.LogTypeSale,
		Quantity:         -item.Quantity,
		PreviousQuantity: prev.Quantity,
		NewQuantity:      next.Quantity,
		OrderID:          &o.ID,
		UserID:           &o.UserID,
		CreatedAt:        s.clock.Now(),
	}
	if o.IdempotencyKey != nil {
		// Per-line derived key so a replayed commit trips the unique index
		// instead of double-decrementing.
		key := fmt.Sprintf("%s:%s", *o.IdempotencyKey, item.ProductID)
		entry.IdempotencyKey = &key
	}
	if err := tx.Stock().AppendLog(ctx, entry); err != nil {
		// A duplicate derived key means a concurrent request with the same
		// idempotency key already committed this line; the caller replays
		// the winning order.
		if entry.IdempotencyKey != nil && infra.IsKind(err, infra.KindDuplicateKey) {
			return errConcurrentIdempotentHit
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}

	if product.Inventory.LowStockThreshold > 0 && next.Quantity <= product.Inventory.LowStockThreshold {
		s.notifyLowStock(ctx, tx, product.ID, product.SKU, next.Quantity)
	}
	return nil
}

// notifyLowStock queues an ops alert. Best effort; checkout never fails on a
// notification problem.
func (s *orderCommandsImpl) notifyLowStock(ctx context.Context, tx shared.Tx, productID uuid.UUID, sku string, remaining int) {
	payload, err := json.Marshal(map[string]any{
		"product_id": productID,
		"sku":        sku,
		"remaining":  remaining,
	})
	if err != nil {
		return
	}
	if err := tx.Notifications().CreateJob(ctx, "ops", "low_stock", payload, s.clock.Now()); err != nil {
		slog.Warn("failed to queue low stock alert", "product_id", productID, "error", err.Error())
	}
}

// createWithFreshNumber inserts the order, regenerating the human-facing
// number on a collision. A duplicate caused by the idempotency key means a
// concurrent request with the same key already won; the caller replays it.
func (s *orderCommandsImpl) createWithFreshNumber(ctx context.Context, tx shared.Tx, o *order.Order) error {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		err := tx.Orders().Create(ctx, o)
		if err == nil {
			return nil
		}
		if !infra.IsKind(err, infra.KindDuplicateKey) {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if o.IdempotencyKey != nil {
			if _, readErr := tx.Reads().OrderByIdempotencyKey(ctx, o.UserID, *o.IdempotencyKey); readErr == nil {
				return errConcurrentIdempotentHit
			}
		}
		o.Number = order.NewNumber(s.clock.Now())
	}
	return ErrOrderNumberExhausted
}

func (s *orderCommandsImpl) enqueueConfirmation(ctx context.Context, tx shared.Tx, o *order.Order) error {
	payload, err := json.Marshal(map[string]any{
		"order_id":     o.ID,
		"order_number": o.Number,
		"user_id":      o.UserID,
		"total_cents":  o.TotalCents,
	})
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if err := tx.Notifications().CreateJob(ctx, "email", "order_confirmed", payload, s.clock.Now()); err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (s *orderCommandsImpl) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	var cancelled *order.Order
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := tx.Reads().OrderByID(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if o.UserID != userID {
			return ErrOrderNotFound
		}
		if !o.Status.CanCancel() {
			return ErrOrderNotCancellable
		}

		if err := o.ApplyTransition(order.StatusCancelled, s.clock.Now()); err != nil {
			return errs.Mark(err, ErrInvalidStatusTransition)
		}
		if err := s.restockItems(ctx, tx, o); err != nil {
			return err
		}
		if err := tx.Orders().UpdateStatus(ctx, o); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *orderCommandsImpl) Transition(ctx context.Context, orderID uuid.UUID, to order.Status) (*order.Order, error) {
	var updated *order.Order
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := tx.Reads().OrderByID(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOrderNotFound
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		if err := o.ApplyTransition(to, s.clock.Now()); err != nil {
			return errs.Mark(err, ErrInvalidStatusTransition)
		}
		if to == order.StatusCancelled {
			if err := s.restockItems(ctx, tx, o); err != nil {
				return err
			}
		}
		if err := tx.Orders().UpdateStatus(ctx, o); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *orderCommandsImpl) restockItems(ctx context.Context, tx shared.Tx, o *order.Order) error {
	for _, item := range o.Items {
		product, err := tx.Reads().ProductByID(ctx, item.ProductID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				slog.Warn("skipping restock for deleted product", "product_id", item.ProductID, "order_id", o.ID)
				continue
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		if !product.Inventory.TrackQuantity {
			continue
		}

		prev, next, err := tx.Stock().Return(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
		entry := &catalog.InventoryLog{
			ID:               uuid.New(),
			ProductID:        item.ProductID,
			Type:             catalog.LogTypeReturn,
			Quantity:         item.Quantity,
			PreviousQuantity: prev.Quantity,
			NewQuantity:      next.Quantity,
			OrderID:          &o.ID,
			UserID:           &o.UserID,
			CreatedAt:        s.clock.Now(),
		}
		if err := tx.Stock().AppendLog(ctx, entry); err != nil {
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}
	}
	return nil
}
