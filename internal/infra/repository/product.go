package repository

import (
	"context"

	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/infra/db"
)

type ProductRepository struct {
	db db.DBTX
}

func NewProductRepository(dbtx db.DBTX) *ProductRepository {
	return &ProductRepository{db: dbtx}
}

const createProductQuery = `
INSERT INTO products (
    id, sku, title, description, price_cents, image_url, status,
    quantity, reserved_quantity, low_stock_threshold,
    track_quantity, allow_backorder, location,
    created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	_, err := r.db.Exec(ctx, createProductQuery,
		p.ID, p.SKU, p.Title, p.Description, p.PriceCents, p.ImageURL, string(p.Status),
		p.Inventory.Quantity, p.Inventory.ReservedQuantity, p.Inventory.LowStockThreshold,
		p.Inventory.TrackQuantity, p.Inventory.AllowBackorder, p.Inventory.Location,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return infra.WrapPgErr("failed to create product", err)
	}
	return nil
}

// Update writes catalog fields only. Stock counters move exclusively through
// StockRepository so the inventory log stays authoritative.
const updateProductQuery = `
UPDATE products
SET sku = $2,
    title = $3,
    description = $4,
    price_cents = $5,
    image_url = $6,
    status = $7,
    low_stock_threshold = $8,
    track_quantity = $9,
    allow_backorder = $10,
    location = $11,
    updated_at = now()
WHERE id = $1
`

func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	tag, err := r.db.Exec(ctx, updateProductQuery,
		p.ID, p.SKU, p.Title, p.Description, p.PriceCents, p.ImageURL, string(p.Status),
		p.Inventory.LowStockThreshold, p.Inventory.TrackQuantity,
		p.Inventory.AllowBackorder, p.Inventory.Location,
	)
	if err != nil {
		return infra.WrapPgErr("failed to update product", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("product not found", nil, infra.KindNotFound)
	}
	return nil
}
