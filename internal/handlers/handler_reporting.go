package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
)

// reportingHandler serves financial statements.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

func newReportingHandler(reportingService portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{reportingService: reportingService}
}

func (h *reportingHandler) profitAndLoss(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	params := struct {
		From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
		To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
	}{}
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), caller, params.From, params.To)
	if err != nil {
		respondError(c, err, "Failed to build profit and loss report")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) balanceSheet(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	asOf, ok := asOfOrNow(c)
	if !ok {
		return
	}

	report, err := h.reportingService.BalanceSheet(c.Request.Context(), caller, asOf)
	if err != nil {
		respondError(c, err, "Failed to build balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

// registerReportingRoutes registers financial statement routes.
func registerReportingRoutes(group *gin.RouterGroup, reportingService portssvc.ReportingService) {
	handler := newReportingHandler(reportingService)

	reports := group.Group("/reports")
	{
		reports.GET("/profit-and-loss", handler.profitAndLoss)
		reports.GET("/balance-sheet", handler.balanceSheet)
	}
}
