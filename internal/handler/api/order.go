package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"aurelia-commerce/internal/domain/catalog"
	"aurelia-commerce/internal/domain/order"
	"aurelia-commerce/internal/handler/dto/request"
	"aurelia-commerce/internal/handler/dto/response"
	"aurelia-commerce/internal/handler/httperr"
	"aurelia-commerce/internal/handler/middleware"
	"aurelia-commerce/internal/usecase/commands"
	"aurelia-commerce/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orders commands.OrderCommands
	views  queries.OrderQueries
}

func NewOrderHandler(orders commands.OrderCommands, views queries.OrderQueries) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		views:  views,
	}
}

func getIdempotencyKey(c *gin.Context) *string {
	key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if key == "" {
		return nil
	}
	return &key
}

func parseCursor(c *gin.Context) *queries.Cursor {
	after := strings.TrimSpace(c.Query("after"))
	if after == "" {
		return nil
	}
	return &queries.Cursor{After: after}
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		return 0
	}
	return limit
}

// @Summary Place an order
// @Description Convert the current cart into an order. Repeating the request with the same Idempotency-Key returns the original order.
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body request.CheckoutRequest true "Checkout request"
// @Success 200 {object} response.CheckoutResponse "Replayed order"
// @Success 201 {object} response.CheckoutResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /orders [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "User not authenticated", nil)
		return
	}

	var req request.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	shipping := req.ShippingAddress.ToDomain()
	billing := shipping
	if req.BillingAddress != nil {
		billing = req.BillingAddress.ToDomain()
	}

	result, err := h.orders.Checkout(c.Request.Context(), userID, commands.CheckoutInput{
		ShippingAddress: shipping,
		BillingAddress:  billing,
		PaymentMethod:   req.PaymentMethod,
		IdempotencyKey:  getIdempotencyKey(c),
		CustomerNotes:   req.CustomerNotes,
	})
	if err != nil {
		var stockErr *catalog.InsufficientStockError
		switch {
		case errors.Is(err, commands.ErrEmptyCart):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Cart is empty", nil)
		case errors.As(err, &stockErr):
			httperr.AbortWithError(c, http.StatusConflict, err, "Not enough stock available",
				gin.H{"product_id": stockErr.ProductID.String()})
		case errors.Is(err, commands.ErrProductUnavailable):
			httperr.AbortWithError(c, http.StatusConflict, err, "Product is no longer available", nil)
		case errors.Is(err, commands.ErrOrderNumberExhausted):
			httperr.AbortWithError(c, http.StatusConflict, err, "Could not allocate an order number, please retry", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, response.CheckoutResponse{
		Order:    response.FromOrder(result.Order),
		Replayed: result.Replayed,
	})
}

// @Summary Get order by ID
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} queries.OrderView
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "User not authenticated", nil)
		return
	}
	role, _ := middleware.GetUserRole(c)

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order ID format", nil)
		return
	}

	view, err := h.views.GetByID(c.Request.Context(), userID, string(role), orderID)
	if err != nil {
		if errors.Is(err, queries.ErrOrderNotVisible) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary List own orders
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.OrderListResponse
// @Failure 401 {object} httperr.Response
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "User not authenticated", nil)
		return
	}

	rows, next, err := h.views.ListByUser(c.Request.Context(), userID, parseCursor(c), parseLimit(c))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid pagination cursor", nil)
		return
	}

	c.JSON(http.StatusOK, response.OrderListResponse{
		Orders:     rows,
		NextCursor: response.CursorString(next),
	})
}

// @Summary Cancel an order
// @Description Cancel a pending or confirmed order and restock its items
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.OrderResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "User not authenticated", nil)
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order ID format", nil)
		return
	}

	cancelled, err := h.orders.Cancel(c.Request.Context(), userID, orderID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
		case errors.Is(err, commands.ErrOrderNotCancellable):
			httperr.AbortWithError(c, http.StatusConflict, err, "Order can no longer be cancelled", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, response.FromOrder(cancelled))
}

// @Summary List all orders (admin)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.OrderListResponse
// @Failure 403 {object} httperr.Response
// @Router /admin/orders [get]
func (h *OrderHandler) AdminList(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	if status != "" && !order.Status(status).IsValid() {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "Invalid order status", nil)
		return
	}

	rows, next, err := h.views.ListAll(c.Request.Context(), status, parseCursor(c), parseLimit(c))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid pagination cursor", nil)
		return
	}

	c.JSON(http.StatusOK, response.OrderListResponse{
		Orders:     rows,
		NextCursor: response.CursorString(next),
	})
}

// @Summary Transition order status (admin)
// @Description Move an order along the fulfillment state machine
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body request.OrderTransitionRequest true "Target status"
// @Success 200 {object} response.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/orders/{id}/status [put]
func (h *OrderHandler) AdminTransition(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid order ID format", nil)
		return
	}

	var req request.OrderTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	to := order.Status(req.Status)
	if !to.IsValid() {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "Invalid order status", nil)
		return
	}

	updated, err := h.orders.Transition(c.Request.Context(), orderID, to)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrOrderNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
		case errors.Is(err, commands.ErrInvalidStatusTransition):
			httperr.AbortWithError(c, http.StatusConflict, err, "Status transition not allowed", nil)
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(http.StatusOK, response.FromOrder(updated))
}
