package api

import (
	"errors"
	"net/http"

	"aurelia-commerce/internal/handler/dto/request"
	"aurelia-commerce/internal/handler/dto/response"
	"aurelia-commerce/internal/handler/middleware"
	"aurelia-commerce/internal/infra"
	"aurelia-commerce/internal/pkg/config"
	"aurelia-commerce/internal/usecase/commands"
	"aurelia-commerce/internal/usecase/queries"
	"aurelia-commerce/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	carts commands.CartCommands
	views queries.CartQueries
	cfg   config.CartConfig
}

func NewCartHandler(carts commands.CartCommands, views queries.CartQueries, cfg config.CartConfig) *CartHandler {
	return &CartHandler{
		carts: carts,
		views: views,
		cfg:   cfg,
	}
}

// cartOwner resolves the cart identity for the request. Authenticated users
// always operate on their user cart, anonymous visitors on the session cart.
func cartOwner(c *gin.Context) (shared.CartOwner, bool) {
	if userID, ok := middleware.GetUserID(c); ok {
		return shared.OwnerForUser(userID), true
	}
	if sid := middleware.GetSessionID(c); sid != "" {
		return shared.OwnerForSession(sid), true
	}
	return shared.CartOwner{}, false
}

// @Summary Get cart
// @Description Get the current cart with live pricing. Anonymous carts are keyed by the X-Session-ID header.
// @Tags cart
// @Produce json
// @Param X-Session-ID header string false "Guest session identifier"
// @Success 200 {object} queries.CartView
// @Failure 400 {object} map[string]string
// @Router /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing session identity",
		})
		return
	}

	view, err := h.views.GetForOwner(c.Request.Context(), owner)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			c.JSON(http.StatusOK, queries.CartView{
				Currency: h.cfg.Currency,
				Lines:    []queries.CartLineView{},
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

// @Summary Add item to cart
// @Description Add a product to the cart, reserving stock for the requested quantity
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Guest session identifier"
// @Param request body request.AddCartItemRequest true "Item to add"
// @Success 200 {object} response.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing session identity",
		})
		return
	}

	var req request.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.carts.AddItem(c.Request.Context(), owner, req.ProductID, req.Quantity)
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromCart(result))
}

// @Summary Update cart item quantity
// @Description Set the quantity of a cart line; zero removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Guest session identifier"
// @Param product_id path string true "Product ID"
// @Param request body request.UpdateCartItemRequest true "New quantity"
// @Success 200 {object} response.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/items/{product_id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing session identity",
		})
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID format",
		})
		return
	}

	var req request.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.carts.UpdateItem(c.Request.Context(), owner, productID, req.Quantity)
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromCart(result))
}

// @Summary Remove item from cart
// @Description Remove a cart line and release its stock hold
// @Tags cart
// @Produce json
// @Param X-Session-ID header string false "Guest session identifier"
// @Param product_id path string true "Product ID"
// @Success 200 {object} response.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /cart/items/{product_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	owner, ok := cartOwner(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing session identity",
		})
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID format",
		})
		return
	}

	result, err := h.carts.RemoveItem(c.Request.Context(), owner, productID)
	if err != nil {
		h.renderCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromCart(result))
}

func (h *CartHandler) renderCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
	case errors.Is(err, commands.ErrCartNotFound), errors.Is(err, commands.ErrCartLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Cart item not found",
		})
	case errors.Is(err, commands.ErrProductUnavailable):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Product is not available for purchase",
		})
	case errors.Is(err, commands.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Not enough stock available",
		})
	case errors.Is(err, commands.ErrInvalidQuantity), errors.Is(err, commands.ErrInvalidCartOwner):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
