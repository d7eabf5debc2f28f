package repository

import (
	"context"

	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/infra/db"
	"aurelia-commerce/internal/pkg/pgconv"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/google/uuid"
)

// StockRepository mutates the product counters with single conditional
// UPDATEs. The row lock from the prev CTE makes the before/after pair exact
// even under concurrent writers; a read-modify-write round trip would not.
type StockRepository struct {
	db db.DBTX
}

func NewStockRepository(dbtx db.DBTX) *StockRepository {
	return &StockRepository{db: dbtx}
}

const reserveStockQuery = `
WITH prev AS (
    SELECT quantity, reserved_quantity, allow_backorder
    FROM products
    WHERE id = $1
    FOR UPDATE
)
UPDATE products p
SET reserved_quantity = p.reserved_quantity + $2,
    updated_at = now()
FROM prev
WHERE p.id = $1
  AND (prev.allow_backorder OR prev.quantity - prev.reserved_quantity >= $2)
RETURNING prev.quantity, prev.reserved_quantity, p.quantity, p.reserved_quantity
`

func (r *StockRepository) Reserve(ctx context.Context, productID uuid.UUID, qty int) (shared.StockLevels, shared.StockLevels, error) {
	return r.conditional(ctx, reserveStockQuery, productID, qty, "failed to reserve stock")
}

const releaseStockQuery = `
WITH prev AS (
    SELECT quantity, reserved_quantity
    FROM products
    WHERE id = $1
    FOR UPDATE
)
UPDATE products p
SET reserved_quantity = GREATEST(p.reserved_quantity - $2, 0),
    updated_at = now()
FROM prev
WHERE p.id = $1
RETURNING prev.quantity, prev.reserved_quantity, p.quantity, p.reserved_quantity
`

// Release floors at zero instead of failing: an over-release after a crashed
// cleanup should converge, not wedge the product.
func (r *StockRepository) Release(ctx context.Context, productID uuid.UUID, qty int) (shared.StockLevels, shared.StockLevels, error) {
	return r.unconditional(ctx, releaseStockQuery, productID, qty, "failed to release stock")
}

const commitSaleQuery = `
WITH prev AS (
    SELECT quantity, reserved_quantity, allow_backorder
    FROM products
    WHERE id = $1
    FOR UPDATE
)
UPDATE products p
SET quantity = p.quantity - $2,
    reserved_quantity = GREATEST(p.reserved_quantity - $2, 0),
    updated_at = now()
FROM prev
WHERE p.id = $1
  AND (prev.allow_backorder OR prev.quantity >= $2)
RETURNING prev.quantity, prev.reserved_quantity, p.quantity, p.reserved_quantity
`

// CommitSale converts a hold into a sale: on-hand drops and the reservation
// is consumed in the same statement. Backordered products may go negative.
func (r *StockRepository) CommitSale(ctx context.Context, productID uuid.UUID, qty int) (shared.StockLevels, shared.StockLevels, error) {
	return r.conditional(ctx, commitSaleQuery, productID, qty, "failed to commit sale")
}

const restockQuery = `
WITH prev AS (
    SELECT quantity, reserved_quantity
    FROM products
    WHERE id = $1
    FOR UPDATE
)
UPDATE products p
SET quantity = p.quantity + $2,
    updated_at = now()
FROM prev
WHERE p.id = $1
RETURNING prev.quantity, prev.reserved_quantity, p.quantity, p.reserved_quantity
`

func (r *StockRepository) Restock(ctx context.Context, productID uuid.UUID, qty int) (shared.StockLevels, shared.StockLevels, error) {
	return r.unconditional(ctx, restockQuery, productID, qty, "failed to restock")
}

func (r *StockRepository) Return(ctx context.Context, productID uuid.UUID, qty int) (shared.StockLevels, shared.StockLevels, error) {
	return r.unconditional(ctx, restockQuery, productID, qty, "failed to return stock")
}

const adjustStockQuery = `
WITH prev AS (
    SELECT quantity, reserved_quantity
    FROM products
    WHERE id = $1
    FOR UPDATE
)
UPDATE products p
SET quantity = p.quantity + $2,
    updated_at = now()
FROM prev
WHERE p.id = $1
  AND prev.quantity + $2 >= 0
RETURNING prev.quantity, prev.reserved_quantity, p.quantity, p.reserved_quantity
`

// Adjust applies a signed correction; it may not push on-hand negative.
func (r *StockRepository) Adjust(ctx context.Context, productID uuid.UUID, delta int) (shared.StockLevels, shared.StockLevels, error) {
	return r.conditional(ctx, adjustStockQuery, productID, delta, "failed to adjust stock")
}

const appendInventoryLogQuery = `
INSERT INTO inventory_logs (
    id, product_id, type, quantity, previous_quantity, new_quantity,
    reason, order_id, user_id, idempotency_key, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

func (r *StockRepository) AppendLog(ctx context.Context, entry *catalog.InventoryLog) error {
	_, err := r.db.Exec(ctx, appendInventoryLogQuery,
		entry.ID,
		entry.ProductID,
		string(entry.Type),
		entry.Quantity,
		entry.PreviousQuantity,
		entry.NewQuantity,
		entry.Reason,
		entry.OrderID,
		entry.UserID,
		entry.IdempotencyKey,
		entry.CreatedAt,
	)
	if err != nil {
		return infra.WrapPgErr("failed to append inventory log", err)
	}
	return nil
}

// conditional runs an update whose WHERE may reject the mutation. A missing
// row means either an unknown product or an insufficiency; a follow-up read
// under the same transaction tells them apart.
func (r *StockRepository) conditional(ctx context.Context, query string, productID uuid.UUID, qty int, msg string) (shared.StockLevels, shared.StockLevels, error) {
	var prev, next shared.StockLevels
	err := r.db.QueryRow(ctx, query, productID, qty).Scan(
		&prev.Quantity, &prev.ReservedQuantity,
		&next.Quantity, &next.ReservedQuantity,
	)
	if err == nil {
		return prev, next, nil
	}
	if !pgconv.IsNoRows(err) {
		return prev, next, infra.WrapRepoErr(msg, err)
	}

	var current shared.StockLevels
	lookupErr := r.db.QueryRow(ctx,
		`SELECT quantity, reserved_quantity FROM products WHERE id = $1`, productID,
	).Scan(&current.Quantity, &current.ReservedQuantity)
	if lookupErr != nil {
		if pgconv.IsNoRows(lookupErr) {
			return prev, next, infra.WrapRepoErr("product not found", lookupErr, infra.KindNotFound)
		}
		return prev, next, infra.WrapRepoErr(msg, lookupErr)
	}

	available := current.Quantity - current.ReservedQuantity
	if available < 0 {
		available = 0
	}
	return prev, next, &catalog.InsufficientStockError{
		ProductID: productID,
		Requested: qty,
		Available: available,
	}
}

func (r *StockRepository) unconditional(ctx context.Context, query string, productID uuid.UUID, qty int, msg string) (shared.StockLevels, shared.StockLevels, error) {
	var prev, next shared.StockLevels
	err := r.db.QueryRow(ctx, query, productID, qty).Scan(
		&prev.Quantity, &prev.ReservedQuantity,
		&next.Quantity, &next.ReservedQuantity,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return prev, next, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return prev, next, infra.WrapRepoErr(msg, err)
	}
	return prev, next, nil
}
