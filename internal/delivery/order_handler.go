package delivery

import (
	"fmt"
	"net/http"
	"strconv"

	"buysmart/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase domain.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc domain.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/orders")
	{
		orders.POST("/items", h.AddItem)
		orders.PUT("/:id/close", h.CloseOrder)
		orders.GET("/:id", h.GetOrderByID)
		orders.GET("", h.ListOrders)
	}
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
}

// AddItem handles POST /orders/items: puts an item into the caller's cart,
// opening a fresh OPEN order if the last one was closed.
func (h *OrderHandler) AddItem(c *gin.Context) {
	custID, ok := customerID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for add-item (customer %d): %v", custID, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.useCase.AddItem(c.Request.Context(), custID, req.ProductID, req.Quantity)
	if err != nil {
		h.log.Warnf("Add-item failed for customer %d: %v", custID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to add item: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated,
		fmt.Sprintf("added product %d x%d to order %d", result.ProductID, result.Quantity, result.OrderID),
		result)
}

// CloseOrder handles PUT /orders/:id/close, the checkout transition.
// Closing an already-closed order reports success.
func (h *OrderHandler) CloseOrder(c *gin.Context) {
	custID, ok := customerID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		h.log.Warnf("Invalid order ID parameter: %s", c.Param("id"))
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	message, err := h.useCase.CloseOrder(c.Request.Context(), custID, orderID)
	if err != nil {
		h.log.Warnf("Close failed for order %d (customer %d): %v", orderID, custID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to close order: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, message, nil)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	custID, ok := customerID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	order, err := h.useCase.GetOrderByID(c.Request.Context(), custID, orderID)
	if err != nil {
		h.log.Warnf("Failed to get order %d for customer %d: %v", orderID, custID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve order: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	custID, ok := customerID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	orders, err := h.useCase.ListOrders(c.Request.Context(), custID, limit, offset)
	if err != nil {
		h.log.Errorf("Failed to list orders for customer %d: %v", custID, err)
		ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	if len(orders) == 0 {
		SuccessResponse(c, http.StatusOK, "No orders found for this customer", []domain.Order{})
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}
