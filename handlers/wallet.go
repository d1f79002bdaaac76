package handlers

import (
	"net/http"
	"strconv"

	"prepbook/middleware"
	"prepbook/models"
	"prepbook/services/wallet"
	"prepbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WalletHandler exposes the caller's wallets.
type WalletHandler struct {
	Service wallet.WalletService
	Logger  *zap.Logger
}

func NewWalletHandler(svc wallet.WalletService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{Service: svc, Logger: logger}
}

// walletRole picks the wallet from ?role=, falling back to the token role.
func walletRole(c *gin.Context) string {
	if role := c.Query("role"); role != "" {
		return role
	}
	return middleware.Role(c)
}

// queryInt reads a positive integer query parameter.
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// GetWallet returns the balance and lifetime totals of one of the caller's wallets.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	summary, err := h.Service.Summary(c.Request.Context(), middleware.Subject(c), walletRole(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": summary})
}

// ListTransactions pages through the caller's ledger, newest first.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	txs, total, err := h.Service.ListTransactions(c.Request.Context(), middleware.Subject(c), walletRole(c), page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"total":        total,
		"page":         page,
	})
}

// TopUp credits the caller's user wallet from a verified gateway payment.
func (h *WalletHandler) TopUp(c *gin.Context) {
	var req models.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.Validation("INVALID_REQUEST", err.Error()))
		return
	}

	subjectID := middleware.Subject(c)
	tx, err := h.Service.TopUp(c.Request.Context(), subjectID, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	h.Logger.Info("Wallet topped up", zap.String("subjectID", subjectID), zap.Float64("amount", tx.Amount))
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}
