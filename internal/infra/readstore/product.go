package readstore

import (
	"context"
	"time"

	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/infra/db"
	"aurelia-commerce/internal/pkg/pgconv"
	"aurelia-commerce/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductReadStore struct {
	db db.DBTX
}

func NewProductReadStore(dbtx db.DBTX) *ProductReadStore {
	return &ProductReadStore{db: dbtx}
}

const productColumns = `
id, sku, title, description, price_cents, image_url, status,
quantity, reserved_quantity, low_stock_threshold,
track_quantity, allow_backorder, location,
created_at, updated_at
`

// FindByID returns the full domain record for write-path validation.
func (r *ProductReadStore) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	var p catalog.Product
	var status string
	err := row.Scan(
		&p.ID, &p.SKU, &p.Title, &p.Description, &p.PriceCents, &p.ImageURL, &status,
		&p.Inventory.Quantity, &p.Inventory.ReservedQuantity, &p.Inventory.LowStockThreshold,
		&p.Inventory.TrackQuantity, &p.Inventory.AllowBackorder, &p.Inventory.Location,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product by ID", err)
	}
	p.Status = catalog.Status(status)
	return &p, nil
}

func (r *ProductReadStore) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productToView(p), nil
}

func productToView(p *catalog.Product) *queries.ProductView {
	return &queries.ProductView{
		ID:                p.ID,
		SKU:               p.SKU,
		Title:             p.Title,
		Description:       p.Description,
		PriceCents:        p.PriceCents,
		ImageURL:          p.ImageURL,
		Status:            string(p.Status),
		AvailableQuantity: p.Inventory.AvailableQuantity(),
		InStock:           !p.Inventory.TrackQuantity || p.Inventory.AvailableQuantity() > 0 || p.Inventory.AllowBackorder,
		LowStock:          p.Inventory.IsLowStock(),
		AllowBackorder:    p.Inventory.AllowBackorder,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

const productListSelect = `
SELECT id, sku, title, price_cents, image_url, status,
       quantity, reserved_quantity, track_quantity, allow_backorder, created_at
FROM products
WHERE status <> 'deleted'
  AND ($1 = '' OR status = $1)
  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR sku ILIKE '%' || $2 || '%')
`

func (r *ProductReadStore) ListFirstPage(ctx context.Context, filter queries.ProductFilter, limit int32) ([]*queries.ProductListItem, error) {
	rows, err := r.db.Query(ctx,
		productListSelect+` ORDER BY created_at DESC, id DESC LIMIT $3`,
		filter.Status, filter.Search, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list products", err)
	}
	return scanProductListItems(rows)
}

func (r *ProductReadStore) ListKeyset(ctx context.Context, filter queries.ProductFilter, afterCreatedAt time.Time, afterID uuid.UUID, limit int32) ([]*queries.ProductListItem, error) {
	rows, err := r.db.Query(ctx,
		productListSelect+` AND (created_at, id) < ($3, $4) ORDER BY created_at DESC, id DESC LIMIT $5`,
		filter.Status, filter.Search, afterCreatedAt, afterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list products keyset", err)
	}
	return scanProductListItems(rows)
}

func scanProductListItems(rows pgx.Rows) ([]*queries.ProductListItem, error) {
	defer rows.Close()

	var result []*queries.ProductListItem
	for rows.Next() {
		var (
			item           queries.ProductListItem
			quantity       int
			reserved       int
			trackQuantity  bool
			allowBackorder bool
		)
		if err := rows.Scan(
			&item.ID, &item.SKU, &item.Title, &item.PriceCents, &item.ImageURL, &item.Status,
			&quantity, &reserved, &trackQuantity, &allowBackorder, &item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan product list item", err)
		}
		available := quantity - reserved
		if available < 0 {
			available = 0
		}
		item.AvailableQuantity = available
		item.InStock = !trackQuantity || available > 0 || allowBackorder
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate product list", err)
	}
	return result, nil
}

const lowStockSelect = `
SELECT id, sku, title, quantity, reserved_quantity, low_stock_threshold
FROM products
WHERE status = 'active'
  AND track_quantity
  AND low_stock_threshold > 0
  AND quantity <= low_stock_threshold
ORDER BY quantity ASC, sku ASC
`

func (r *ProductReadStore) ListLowStock(ctx context.Context) ([]*queries.LowStockItem, error) {
	rows, err := r.db.Query(ctx, lowStockSelect)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list low stock products", err)
	}
	defer rows.Close()

	var result []*queries.LowStockItem
	for rows.Next() {
		var item queries.LowStockItem
		if err := rows.Scan(
			&item.ID, &item.SKU, &item.Title,
			&item.Quantity, &item.ReservedQuantity, &item.LowStockThreshold,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan low stock item", err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate low stock products", err)
	}
	return result, nil
}

const inventoryLogSelect = `
SELECT id, product_id, type, quantity, previous_quantity, new_quantity,
       reason, order_id, user_id, created_at
FROM inventory_logs
WHERE product_id = $1
`

func (r *ProductReadStore) LogsFirstPage(ctx context.Context, productID uuid.UUID, limit int32) ([]*queries.InventoryLogView, error) {
	rows, err := r.db.Query(ctx,
		inventoryLogSelect+` ORDER BY created_at DESC, id DESC LIMIT $2`,
		productID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list inventory logs", err)
	}
	return scanInventoryLogs(rows)
}

func (r *ProductReadStore) LogsKeyset(ctx context.Context, productID uuid.UUID, afterCreatedAt time.Time, afterID uuid.UUID, limit int32) ([]*queries.InventoryLogView, error) {
	rows, err := r.db.Query(ctx,
		inventoryLogSelect+` AND (created_at, id) < ($2, $3) ORDER BY created_at DESC, id DESC LIMIT $4`,
		productID, afterCreatedAt, afterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list inventory logs keyset", err)
	}
	return scanInventoryLogs(rows)
}

func scanInventoryLogs(rows pgx.Rows) ([]*queries.InventoryLogView, error) {
	defer rows.Close()

	var result []*queries.InventoryLogView
	for rows.Next() {
		var v queries.InventoryLogView
		if err := rows.Scan(
			&v.ID, &v.ProductID, &v.Type, &v.Quantity, &v.PreviousQuantity, &v.NewQuantity,
			&v.Reason, &v.OrderID, &v.UserID, &v.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan inventory log", err)
		}
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate inventory logs", err)
	}
	return result, nil
}
