package response

import (
	"aurelia-commerce/internal/usecase/queries"
	"aurelia-commerce/internal/usecase/shared"
)

type LowStockResponse struct {
	Products []*queries.LowStockItem `json:"products"`
}

type StockLevelsResponse struct {
	Quantity          int `json:"quantity"`
	ReservedQuantity  int `json:"reserved_quantity"`
	AvailableQuantity int `json:"available_quantity"`
}

func FromStockLevels(levels shared.StockLevels) StockLevelsResponse {
	return StockLevelsResponse{
		Quantity:          levels.Quantity,
		ReservedQuantity:  levels.ReservedQuantity,
		AvailableQuantity: levels.Quantity - levels.ReservedQuantity,
	}
}
