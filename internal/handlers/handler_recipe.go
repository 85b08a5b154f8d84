package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// recipeHandler exposes the named business operations. Each endpoint expands
// its request into a balanced draft and posts it through the journal engine.
type recipeHandler struct {
	recipeService portssvc.RecipeService
}

func newRecipeHandler(recipeService portssvc.RecipeService) *recipeHandler {
	return &recipeHandler{recipeService: recipeService}
}

// cashMovement adapts the four single-amount recipes to one handler shape.
func (h *recipeHandler) cashMovement(post func(c *gin.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerOrAbort(c)
		if !ok {
			return
		}
		req := dto.CashMovementRequest{}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

		txn, err := post(c, caller, req)
		if err != nil {
			respondError(c, err, "Failed to post operation")
			return
		}
		c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
	}
}

func (h *recipeHandler) currencyTrade(post func(c *gin.Context, caller domain.CallContext, req dto.CurrencyTradeRequest) (*domain.Transaction, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := callerOrAbort(c)
		if !ok {
			return
		}
		req := dto.CurrencyTradeRequest{}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

		txn, err := post(c, caller, req)
		if err != nil {
			respondError(c, err, "Failed to post trade")
			return
		}
		c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
	}
}

func (h *recipeHandler) transfer(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := dto.TransferRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

	txn, err := h.recipeService.Transfer(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to post transfer")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *recipeHandler) remittanceSend(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := dto.RemittanceSendRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

	txn, intent, err := h.recipeService.RemittanceSend(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to post remittance send")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"transaction": dto.ToTransactionResponse(txn),
		"intent":      intent,
	})
}

func (h *recipeHandler) remittanceReceive(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := dto.RemittanceReceiveRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

	txn, err := h.recipeService.RemittanceReceive(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to post remittance receive")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *recipeHandler) chargeFee(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := dto.FeeRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

	txn, err := h.recipeService.ChargeFee(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to post fee")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *recipeHandler) refund(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := dto.RefundRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.IdempotencyKey = idempotencyKey(c, req.IdempotencyKey)

	txn, err := h.recipeService.Refund(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to post refund")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *recipeHandler) updateRemittanceStatus(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := struct {
		Status     domain.RemittanceStatus `json:"status" binding:"required"`
		PartnerRef *string                 `json:"partnerRef"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.recipeService.UpdateRemittanceStatus(c.Request.Context(), caller, c.Param("intentID"), req.Status, req.PartnerRef); err != nil {
		respondError(c, err, "Failed to update remittance status")
		return
	}
	c.Status(http.StatusNoContent)
}

// registerRecipeRoutes registers the business operation routes.
func registerRecipeRoutes(group *gin.RouterGroup, recipeService portssvc.RecipeService) {
	h := newRecipeHandler(recipeService)

	ops := group.Group("/operations")
	{
		ops.POST("/cash-receipt", h.cashMovement(func(c *gin.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error) {
			return h.recipeService.CashReceipt(c.Request.Context(), caller, req)
		}))
		ops.POST("/cash-payment", h.cashMovement(func(c *gin.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error) {
			return h.recipeService.CashPayment(c.Request.Context(), caller, req)
		}))
		ops.POST("/bank-deposit", h.cashMovement(func(c *gin.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error) {
			return h.recipeService.BankDeposit(c.Request.Context(), caller, req)
		}))
		ops.POST("/bank-withdrawal", h.cashMovement(func(c *gin.Context, caller domain.CallContext, req dto.CashMovementRequest) (*domain.Transaction, error) {
			return h.recipeService.BankWithdrawal(c.Request.Context(), caller, req)
		}))
		ops.POST("/currency-buy", h.currencyTrade(func(c *gin.Context, caller domain.CallContext, req dto.CurrencyTradeRequest) (*domain.Transaction, error) {
			return h.recipeService.CurrencyBuy(c.Request.Context(), caller, req)
		}))
		ops.POST("/currency-sell", h.currencyTrade(func(c *gin.Context, caller domain.CallContext, req dto.CurrencyTradeRequest) (*domain.Transaction, error) {
			return h.recipeService.CurrencySell(c.Request.Context(), caller, req)
		}))
		ops.POST("/transfer", h.transfer)
		ops.POST("/remittance-send", h.remittanceSend)
		ops.POST("/remittance-receive", h.remittanceReceive)
		ops.POST("/fee", h.chargeFee)
		ops.POST("/refund", h.refund)
	}

	remittances := group.Group("/remittances")
	{
		remittances.PUT("/:intentID/status", h.updateRemittanceStatus)
	}
}
