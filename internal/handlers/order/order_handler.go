// internal/handlers/order/order_handler.go
package order

import (
	"net/http"
	"strconv"

	"salora-service/internal/domain/order"
	"salora-service/internal/middleware"
	"salora-service/internal/pkg/response"
	service "salora-service/internal/service/order"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// CreateOrder opens a draft order
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)

	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	o, err := h.orderService.CreateOrder(c.Request.Context(), salonID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "order created", o)
}

// GetOrder retrieves one order
func (h *OrderHandler) GetOrder(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)
	orderID, err := orderIDParam(c)
	if err != nil {
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), salonID, orderID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "order retrieved", o)
}

// ListOrders retrieves the salon's orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)

	var filters order.OrderListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), salonID, &filters)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "orders retrieved", result)
}

// AddItem appends a line item to a draft order
func (h *OrderHandler) AddItem(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)
	orderID, err := orderIDParam(c)
	if err != nil {
		return
	}

	var req order.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	o, err := h.orderService.AddItem(c.Request.Context(), salonID, orderID, req.Item)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "line item added", o)
}

// RemoveItem drops a line item from a draft order
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)
	orderID, err := orderIDParam(c)
	if err != nil {
		return
	}
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid item ID", err)
		return
	}

	o, err := h.orderService.RemoveItem(c.Request.Context(), salonID, orderID, itemID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "line item removed", o)
}

// SetItemQuantity changes a line item's quantity
func (h *OrderHandler) SetItemQuantity(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)
	orderID, err := orderIDParam(c)
	if err != nil {
		return
	}
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid item ID", err)
		return
	}

	var req order.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	o, err := h.orderService.SetItemQuantity(c.Request.Context(), salonID, orderID, itemID, req.Quantity)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "quantity updated", o)
}

// GetTotals returns the current settlement snapshot
func (h *OrderHandler) GetTotals(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)
	orderID, err := orderIDParam(c)
	if err != nil {
		return
	}

	totals, err := h.orderService.GetTotals(c.Request.Context(), salonID, orderID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "totals computed", totals)
}

// Checkout settles whatever remains due on the order
func (h *OrderHandler) Checkout(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)
	orderID, err := orderIDParam(c)
	if err != nil {
		return
	}

	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	result, err := h.orderService.Checkout(c.Request.Context(), salonID, orderID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "checkout settled", result)
}

// RecordPayment appends an externally confirmed payment
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)
	orderID, err := orderIDParam(c)
	if err != nil {
		return
	}

	var req order.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	o, err := h.orderService.RecordPayment(c.Request.Context(), salonID, orderID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "payment recorded", o)
}

// CancelOrder cancels an order that has no committed payments
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)
	orderID, err := orderIDParam(c)
	if err != nil {
		return
	}

	o, err := h.orderService.CancelOrder(c.Request.Context(), salonID, orderID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "order cancelled", o)
}

func orderIDParam(c *gin.Context) (int64, error) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid order ID", err)
		return 0, err
	}
	return orderID, nil
}
