// File: prepbook/handlers/booking.go
package handlers

import (
	"net/http"

	"prepbook/middleware"
	"prepbook/models"
	"prepbook/services/booking"
	"prepbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// CreateBooking books a slot for the authenticated payer.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.Validation("INVALID_REQUEST", err.Error()))
		return
	}

	b, err := h.Service.Create(c.Request.Context(), middleware.Subject(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.Logger.Info("Booking created",
		zap.String("bookingID", b.ID),
		zap.String("status", b.Status),
		zap.String("paymentMethod", b.PaymentMethod))
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

// ListBookings lists the caller's bookings, as payer by default or as provider with ?as=provider.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	filter := models.BookingFilter{
		Status: c.Query("status"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}
	switch c.DefaultQuery("as", "payer") {
	case "payer":
		filter.UserID = middleware.Subject(c)
	case "provider":
		filter.ProviderID = middleware.Subject(c)
	default:
		utils.RespondError(c, utils.Validation("INVALID_REQUEST", "as must be payer or provider"))
		return
	}

	bookings, total, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    total,
		"page":     filter.Page,
	})
}

// GetBooking returns one booking to one of its parties.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Service.Get(c.Request.Context(), middleware.Subject(c), middleware.Role(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ConfirmPayment applies a signed gateway confirmation to a pending booking.
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	var proof models.PaymentProof
	if err := c.ShouldBindJSON(&proof); err != nil {
		utils.RespondError(c, utils.Validation("INVALID_REQUEST", err.Error()))
		return
	}

	b, err := h.Service.ConfirmPayment(c.Request.Context(), c.Param("id"), proof)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.Logger.Info("Booking payment confirmed", zap.String("bookingID", b.ID))
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// CancelBooking cancels the payer's booking. The body is optional.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req models.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, utils.Validation("INVALID_REQUEST", err.Error()))
			return
		}
	}

	b, err := h.Service.Cancel(c.Request.Context(), middleware.Subject(c), c.Param("id"), req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.Logger.Info("Booking cancelled", zap.String("bookingID", b.ID), zap.String("reason", b.CancellationReason))
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// CompleteBooking marks a confirmed session as held.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	b, err := h.Service.Complete(c.Request.Context(), middleware.Subject(c), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
