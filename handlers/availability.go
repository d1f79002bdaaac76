package handlers

import (
	"net/http"

	"prepbook/middleware"
	"prepbook/models"
	"prepbook/services/availability"
	"prepbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AvailabilityHandler serves slot availability and interviewer slot rules.
type AvailabilityHandler struct {
	Service availability.AvailabilityService
	Logger  *zap.Logger
}

func NewAvailabilityHandler(svc availability.AvailabilityService, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Service: svc, Logger: logger}
}

// GetAvailability lists the slots of a provider on ?date=YYYY-MM-DD.
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.RespondError(c, utils.Validation("INVALID_DATE", "date query parameter is required"))
		return
	}

	resp, err := h.Service.GetAvailability(c.Request.Context(), c.Param("providerId"), date)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SaveSlotRules replaces the authenticated interviewer's weekly rules.
func (h *AvailabilityHandler) SaveSlotRules(c *gin.Context) {
	var req models.SaveSlotRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.Validation("INVALID_REQUEST", err.Error()))
		return
	}

	providerID := middleware.Subject(c)
	rule, err := h.Service.SaveRules(c.Request.Context(), providerID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.Logger.Info("Slot rules saved", zap.String("providerID", providerID))
	c.JSON(http.StatusOK, gin.H{"message": "Slot rules saved", "rules": rule})
}

// GetSlotRules returns a provider's rules, or the defaults when none were saved.
func (h *AvailabilityHandler) GetSlotRules(c *gin.Context) {
	rule, err := h.Service.GetRules(c.Request.Context(), c.Param("providerId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rule})
}
