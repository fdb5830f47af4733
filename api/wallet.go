package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/surgefare/internal/service/wallet"
	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	service wallet.LedgerUseCase
}

type entryResponse struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	Reference    string    `json:"reference"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewWalletHandler(service wallet.LedgerUseCase) *WalletHandler {
	return &WalletHandler{service: service}
}

func (h *WalletHandler) Register(router *gin.RouterGroup) {
	router.GET("/wallet", h.balance)
	router.GET("/wallet/transactions", h.transactions)
}

func (h *WalletHandler) balance(c *gin.Context) {
	w, err := h.service.GetBalance(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"user_id": w.UserID, "balance": w.Balance},
	})
}

func (h *WalletHandler) transactions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abort(c, http.StatusBadRequest, codeValidation, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.service.Statement(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	data := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		data = append(data, entryResponse{
			ID:           e.ID,
			Type:         string(e.Kind),
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			Reference:    e.Reference,
			CreatedAt:    e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}
