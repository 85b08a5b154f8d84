package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// rateHandler handles exchange rate publication and lookups.
type rateHandler struct {
	rateService portssvc.RateService
}

func newRateHandler(rateService portssvc.RateService) *rateHandler {
	return &rateHandler{rateService: rateService}
}

func (h *rateHandler) setRate(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := dto.SetRateRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rate, err := h.rateService.SetRate(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to set exchange rate")
		return
	}
	c.JSON(http.StatusCreated, dto.ToRateResponse(rate))
}

func (h *rateHandler) currentRate(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	params := struct {
		From string     `form:"from" binding:"required,len=3"`
		To   string     `form:"to" binding:"required,len=3"`
		At   *time.Time `form:"at" time_format:"2006-01-02T15:04:05Z07:00"`
	}{}
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	at := time.Now()
	if params.At != nil {
		at = *params.At
	}
	rate, err := h.rateService.CurrentRate(c.Request.Context(), caller, params.From, params.To, at)
	if err != nil {
		respondError(c, err, "Failed to resolve exchange rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToRateResponse(rate))
}

func (h *rateHandler) listRateHistory(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	params := struct {
		From  string `form:"from" binding:"required,len=3"`
		To    string `form:"to" binding:"required,len=3"`
		Limit int    `form:"limit"`
	}{}
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	changes, err := h.rateService.ListRateHistory(c.Request.Context(), caller, params.From, params.To, params.Limit)
	if err != nil {
		respondError(c, err, "Failed to list rate history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"changes": changes})
}

// registerRateRoutes registers exchange rate routes.
func registerRateRoutes(group *gin.RouterGroup, rateService portssvc.RateService) {
	handler := newRateHandler(rateService)

	rates := group.Group("/rates")
	{
		rates.POST("", handler.setRate)
		rates.GET("/current", handler.currentRate)
		rates.GET("/history", handler.listRateHistory)
	}
}
