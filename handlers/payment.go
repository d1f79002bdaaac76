package handlers

import (
	"net/http"

	"prepbook/middleware"
	"prepbook/models"
	"prepbook/services/payment"
	"prepbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler opens gateway orders for bookings and top-ups.
type PaymentHandler struct {
	Gateway payment.OrderGateway
	Logger  *zap.Logger
}

func NewPaymentHandler(gw payment.OrderGateway, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Gateway: gw, Logger: logger}
}

func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.Validation("INVALID_REQUEST", err.Error()))
		return
	}
	if req.Amount <= 0 {
		utils.RespondError(c, utils.Validation("INVALID_REQUEST", "amount must be positive"))
		return
	}

	order, err := h.Gateway.CreateOrder(c.Request.Context(), middleware.Subject(c), req)
	if err != nil {
		h.Logger.Error("Failed to create payment order", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, utils.ErrorResponse{
			Code:    "GATEWAY_ERROR",
			Message: "Failed to create payment order",
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}
