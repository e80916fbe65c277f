package delivery

import (
	"net/http"
	"strconv"

	"buysmart/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PaymentHandler struct {
	useCase domain.PaymentUseCase
	log     *logrus.Logger
}

func NewPaymentHandler(uc domain.PaymentUseCase, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *PaymentHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/orders/:id/payments", h.RecordPayment)
	router.GET("/orders/:id/payments", h.ListPayments)
}

type paymentRequest struct {
	Method string  `json:"method" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

func (h *PaymentHandler) RecordPayment(c *gin.Context) {
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

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	payment, err := h.useCase.RecordPayment(c.Request.Context(), custID, orderID, req.Method, req.Amount)
	if err != nil {
		h.log.Warnf("Payment failed for order %d (customer %d): %v", orderID, custID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to record payment: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Payment recorded successfully", payment)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
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

	payments, err := h.useCase.ListPayments(c.Request.Context(), custID, orderID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve payments: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Payments retrieved successfully", payments)
}
