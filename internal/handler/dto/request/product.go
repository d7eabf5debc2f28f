package request

import (
	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/usecase/commands"
)

type ProductRequest struct {
	SKU               string `json:"sku" binding:"required"`
	Title             string `json:"title" binding:"required"`
	Description       string `json:"description"`
	PriceCents        int64  `json:"price_cents" binding:"required,gt=0"`
	ImageURL          string `json:"image_url"`
	Status            string `json:"status" binding:"required"`
	Quantity          int    `json:"quantity" binding:"gte=0"`
	LowStockThreshold int    `json:"low_stock_threshold" binding:"gte=0"`
	TrackQuantity     bool   `json:"track_quantity"`
	AllowBackorder    bool   `json:"allow_backorder"`
	Location          string `json:"location"`
}

func (r ProductRequest) ToInput() commands.ProductInput {
	return commands.ProductInput{
		SKU:         r.SKU,
		Title:       r.Title,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		ImageURL:    r.ImageURL,
		Status:      catalog.Status(r.Status),
		Inventory: catalog.Inventory{
			Quantity:          r.Quantity,
			LowStockThreshold: r.LowStockThreshold,
			TrackQuantity:     r.TrackQuantity,
			AllowBackorder:    r.AllowBackorder,
			Location:          r.Location,
		},
	}
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

type RestockRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Reason   string `json:"reason"`
}
