package api

import (
	"errors"
	"net/http"
	"strings"

	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/handler/dto/request"
	"aurelia-commerce/internal/handler/dto/response"
	"aurelia-commerce/internal/handler/middleware"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/usecase/commands"
	"aurelia-commerce/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProductHandler struct {
	inventory commands.InventoryCommands
	views     queries.ProductQueries
}

func NewProductHandler(inventory commands.InventoryCommands, views queries.ProductQueries) *ProductHandler {
	return &ProductHandler{
		inventory: inventory,
		views:     views,
	}
}

// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} queries.ProductView
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID format",
		})
		return
	}

	view, err := h.views.GetByID(c.Request.Context(), productID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary List products
// @Description List active products with optional search, newest first
// @Tags products
// @Produce json
// @Param search query string false "Search in title or SKU"
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.ProductListResponse
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	filter := queries.ProductFilter{
		Status: string(catalog.StatusActive),
		Search: strings.TrimSpace(c.Query("search")),
	}

	rows, next, err := h.views.List(c.Request.Context(), filter, parseCursor(c), parseLimit(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pagination cursor",
		})
		return
	}

	c.JSON(http.StatusOK, response.ProductListResponse{
		Products:   rows,
		NextCursor: response.CursorString(next),
	})
}

// @Summary List products (admin)
// @Description List products across every status with optional filters
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Param search query string false "Search in title or SKU"
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.ProductListResponse
// @Failure 403 {object} map[string]string
// @Router /admin/products [get]
func (h *ProductHandler) AdminList(c *gin.Context) {
	filter := queries.ProductFilter{
		Status: strings.TrimSpace(c.Query("status")),
		Search: strings.TrimSpace(c.Query("search")),
	}

	rows, next, err := h.views.List(c.Request.Context(), filter, parseCursor(c), parseLimit(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pagination cursor",
		})
		return
	}

	c.JSON(http.StatusOK, response.ProductListResponse{
		Products:   rows,
		NextCursor: response.CursorString(next),
	})
}

// @Summary Create product (admin)
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.ProductRequest true "Product data"
// @Success 201 {object} catalog.Product
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	created, err := h.inventory.CreateProduct(c.Request.Context(), req.ToInput())
	if err != nil {
		h.renderInventoryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// @Summary Update product (admin)
// @Description Update catalog fields. Stock counters only move through the stock endpoints.
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body request.ProductRequest true "Product data"
// @Success 200 {object} catalog.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID format",
		})
		return
	}

	var req request.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	updated, err := h.inventory.UpdateProduct(c.Request.Context(), productID, req.ToInput())
	if err != nil {
		h.renderInventoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// @Summary Adjust stock (admin)
// @Description Apply a signed correction to on-hand quantity with an audit reason
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body request.AdjustStockRequest true "Adjustment"
// @Success 200 {object} response.StockLevelsResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/products/{id}/stock/adjust [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID format",
		})
		return
	}

	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req request.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	levels, err := h.inventory.AdjustStock(c.Request.Context(), productID, req.Delta, req.Reason, actorID)
	if err != nil {
		h.renderInventoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromStockLevels(levels))
}

// @Summary Restock product (admin)
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body request.RestockRequest true "Restock quantity"
// @Success 200 {object} response.StockLevelsResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /admin/products/{id}/stock/restock [post]
func (h *ProductHandler) Restock(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID format",
		})
		return
	}

	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req request.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	levels, err := h.inventory.Restock(c.Request.Context(), productID, req.Quantity, req.Reason, actorID)
	if err != nil {
		h.renderInventoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromStockLevels(levels))
}

// @Summary Stock movement history (admin)
// @Description Inventory ledger entries for a product, newest first
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Product ID"
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.InventoryLogListResponse
// @Failure 400 {object} map[string]string
// @Router /admin/products/{id}/stock/logs [get]
func (h *ProductHandler) StockLogs(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID format",
		})
		return
	}

	rows, next, err := h.views.StockLogs(c.Request.Context(), productID, parseCursor(c), parseLimit(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid pagination cursor",
		})
		return
	}

	c.JSON(http.StatusOK, response.InventoryLogListResponse{
		Logs:       rows,
		NextCursor: response.CursorString(next),
	})
}

// @Summary Low stock report (admin)
// @Description Tracked products at or under their low-stock threshold
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.LowStockResponse
// @Router /admin/inventory/low-stock [get]
func (h *ProductHandler) LowStock(c *gin.Context) {
	rows, err := h.views.LowStock(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if rows == nil {
		rows = []*queries.LowStockItem{}
	}

	c.JSON(http.StatusOK, response.LowStockResponse{Products: rows})
}

func (h *ProductHandler) renderInventoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	case errors.Is(err, commands.ErrSKUAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{
			"error": "SKU already exists",
		})
	case errors.Is(err, commands.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Adjustment would drive stock negative",
		})
	case errors.Is(err, commands.ErrInvalidStatus),
		errors.Is(err, commands.ErrInvalidAdjust),
		errors.Is(err, commands.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
