package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// transactionHandler handles the journal engine endpoints.
type transactionHandler struct {
	postingService portssvc.PostingService
}

func newTransactionHandler(postingService portssvc.PostingService) *transactionHandler {
	return &transactionHandler{postingService: postingService}
}

func (h *transactionHandler) postTransaction(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	draft := dto.TransactionDraft{}
	if err := c.ShouldBindJSON(&draft); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.postingService.Post(c.Request.Context(), caller, draft, idempotencyKey(c, nil))
	if err != nil {
		respondError(c, err, "Failed to post transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	txn, err := h.postingService.GetTransaction(c.Request.Context(), caller, c.Param("transactionID"))
	if err != nil {
		respondError(c, err, "Failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) listTransactions(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	query := dto.LedgerQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	txns, next, err := h.postingService.ListTransactions(c.Request.Context(), caller, query)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	responses := make([]dto.TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = dto.ToTransactionResponse(&txns[i])
	}
	c.JSON(http.StatusOK, gin.H{"transactions": responses, "nextToken": next})
}

func (h *transactionHandler) approveTransaction(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	txn, err := h.postingService.Approve(c.Request.Context(), caller, c.Param("transactionID"))
	if err != nil {
		respondError(c, err, "Failed to approve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) cancelTransaction(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := struct {
		Reason string `json:"reason" binding:"required"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.postingService.Cancel(c.Request.Context(), caller, c.Param("transactionID"), req.Reason); err != nil {
		respondError(c, err, "Failed to cancel transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := struct {
		Description    string  `json:"description"`
		IdempotencyKey *string `json:"idempotencyKey"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.postingService.Reverse(c.Request.Context(), caller, c.Param("transactionID"), req.Description, idempotencyKey(c, req.IdempotencyKey))
	if err != nil {
		respondError(c, err, "Failed to reverse transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// registerTransactionRoutes registers journal engine routes.
func registerTransactionRoutes(group *gin.RouterGroup, postingService portssvc.PostingService) {
	handler := newTransactionHandler(postingService)

	txns := group.Group("/transactions")
	{
		txns.POST("", handler.postTransaction)
		txns.GET("", handler.listTransactions)
		txns.GET("/:transactionID", handler.getTransaction)
		txns.POST("/:transactionID/approve", handler.approveTransaction)
		txns.POST("/:transactionID/cancel", handler.cancelTransaction)
		txns.POST("/:transactionID/reverse", handler.reverseTransaction)
	}
}
