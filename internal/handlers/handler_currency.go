package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
)

// currencyHandler handles the currency registry and conversions.
type currencyHandler struct {
	currencyService portssvc.CurrencyService
}

func newCurrencyHandler(currencyService portssvc.CurrencyService) *currencyHandler {
	return &currencyHandler{currencyService: currencyService}
}

func (h *currencyHandler) registerCurrency(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := struct {
		CurrencyCode  string `json:"currencyCode" binding:"required,min=3,max=4"`
		Name          string `json:"name" binding:"required"`
		Symbol        string `json:"symbol"`
		DecimalPlaces int32  `json:"decimalPlaces" binding:"min=0,max=8"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	currency := domain.Currency{
		CurrencyCode:  req.CurrencyCode,
		Name:          req.Name,
		Symbol:        req.Symbol,
		DecimalPlaces: req.DecimalPlaces,
	}
	if err := h.currencyService.RegisterCurrency(c.Request.Context(), caller, currency); err != nil {
		respondError(c, err, "Failed to register currency")
		return
	}
	c.JSON(http.StatusCreated, currency)
}

func (h *currencyHandler) getCurrency(c *gin.Context) {
	currency, err := h.currencyService.GetCurrency(c.Request.Context(), c.Param("currencyCode"))
	if err != nil {
		respondError(c, err, "Failed to get currency")
		return
	}
	c.JSON(http.StatusOK, currency)
}

func (h *currencyHandler) listCurrencies(c *gin.Context) {
	currencies, err := h.currencyService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list currencies")
		return
	}
	c.JSON(http.StatusOK, gin.H{"currencies": currencies})
}

func (h *currencyHandler) convert(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	params := struct {
		From   string           `form:"from" binding:"required,len=3"`
		To     string           `form:"to" binding:"required,len=3"`
		Amount decimal.Decimal  `form:"amount" binding:"required"`
		Rate   *decimal.Decimal `form:"rate"`
	}{}
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	converted, err := h.currencyService.Convert(c.Request.Context(), caller, params.From, params.To, params.Amount, params.Rate)
	if err != nil {
		respondError(c, err, "Failed to convert amount")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"from":   params.From,
		"to":     params.To,
		"amount": params.Amount,
		"result": converted,
	})
}

// registerCurrencyRoutes registers currency registry routes.
func registerCurrencyRoutes(group *gin.RouterGroup, currencyService portssvc.CurrencyService) {
	handler := newCurrencyHandler(currencyService)

	currencies := group.Group("/currencies")
	{
		currencies.POST("", handler.registerCurrency)
		currencies.GET("", handler.listCurrencies)
		currencies.GET("/convert", handler.convert)
		currencies.GET("/:currencyCode", handler.getCurrency)
	}
}
