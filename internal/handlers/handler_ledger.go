package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// ledgerHandler serves balance and general-ledger projections.
type ledgerHandler struct {
	ledgerService portssvc.LedgerService
}

func newLedgerHandler(ledgerService portssvc.LedgerService) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// asOfOrNow parses the optional asOf query parameter.
func asOfOrNow(c *gin.Context) (time.Time, bool) {
	raw := c.Query("asOf")
	if raw == "" {
		return time.Now(), true
	}
	asOf, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be RFC3339"})
		return time.Time{}, false
	}
	return asOf, true
}

func (h *ledgerHandler) getBalance(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	var asOf *time.Time
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be RFC3339"})
			return
		}
		asOf = &parsed
	}

	balance, err := h.ledgerService.Balance(c.Request.Context(), caller, c.Param("accountID"), asOf)
	if err != nil {
		respondError(c, err, "Failed to get balance")
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (h *ledgerHandler) listLedger(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	query := dto.LedgerQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindError(c, err)
		return
	}

	page, err := h.ledgerService.Ledger(c.Request.Context(), caller, query)
	if err != nil {
		respondError(c, err, "Failed to list ledger rows")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ledgerHandler) trialBalance(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	asOf, ok := asOfOrNow(c)
	if !ok {
		return
	}

	report, err := h.ledgerService.TrialBalance(c.Request.Context(), caller, asOf)
	if err != nil {
		respondError(c, err, "Failed to build trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ledgerHandler) auditZeroSum(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	asOf, ok := asOfOrNow(c)
	if !ok {
		return
	}

	net, err := h.ledgerService.AuditZeroSum(c.Request.Context(), caller, asOf)
	if err != nil {
		respondError(c, err, "Failed to audit ledger")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"asOf":    asOf,
		"net":     net,
		"healthy": net.IsZero(),
	})
}

// registerLedgerRoutes registers balance and ledger projection routes.
func registerLedgerRoutes(group *gin.RouterGroup, ledgerService portssvc.LedgerService) {
	handler := newLedgerHandler(ledgerService)

	ledger := group.Group("/ledger")
	{
		ledger.GET("", handler.listLedger)
		ledger.GET("/trial-balance", handler.trialBalance)
		ledger.GET("/audit", handler.auditZeroSum)
	}
	group.GET("/accounts/:accountID/balance", handler.getBalance)
}
