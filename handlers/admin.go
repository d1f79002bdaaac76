// File: prepbook/handlers/admin.go
package handlers

import (
	"net/http"

	"prepbook/models"
	"prepbook/services/wallet"
	"prepbook/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler encapsulates elevated admin-level operations.
type AdminHandler struct {
	WalletService wallet.WalletService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ws wallet.WalletService) *AdminHandler {
	return &AdminHandler{WalletService: ws}
}

// GetAllWalletsHandler returns every wallet of a role with its aggregated totals.
func (ah *AdminHandler) GetAllWalletsHandler(c *gin.Context) {
	summaries, err := ah.WalletService.ListSummaries(c.Request.Context(), c.DefaultQuery("role", models.RoleInterviewer))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": summaries})
}

// HealthHandler reports the last dependency health snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"health": utils.GetHealthStatus(),
	})
}
