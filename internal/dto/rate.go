package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// SetRateRequest defines the payload for publishing a new exchange rate.
// The previous active window for the pair is truncated at ValidFrom.
type SetRateRequest struct {
	FromCurrency string            `json:"fromCurrency" binding:"required,len=3"`
	ToCurrency   string            `json:"toCurrency" binding:"required,len=3"`
	Bid          decimal.Decimal   `json:"bid" binding:"required"`
	Ask          decimal.Decimal   `json:"ask" binding:"required"`
	VIPBid       *decimal.Decimal  `json:"vipBid"`
	VIPAsk       *decimal.Decimal  `json:"vipAsk"`
	ValidFrom    time.Time         `json:"validFrom"`
	ValidTo      *time.Time        `json:"validTo"`
	Source       domain.RateSource `json:"source" binding:"required,oneof=MANUAL API BANK MARKET"`
	MinAmount    *decimal.Decimal  `json:"minAmount"`
	MaxAmount    *decimal.Decimal  `json:"maxAmount"`
	DailyLimit   *decimal.Decimal  `json:"dailyLimit"`
	Reason       string            `json:"reason"`
}

// RateResponse mirrors a stored exchange rate.
type RateResponse struct {
	RateID       string            `json:"rateID"`
	FromCurrency string            `json:"fromCurrency"`
	ToCurrency   string            `json:"toCurrency"`
	Bid          decimal.Decimal   `json:"bid"`
	Ask          decimal.Decimal   `json:"ask"`
	Spread       decimal.Decimal   `json:"spread"`
	ValidFrom    time.Time         `json:"validFrom"`
	ValidTo      *time.Time        `json:"validTo,omitempty"`
	Source       domain.RateSource `json:"source"`
}

// ToRateResponse maps a domain rate to its response shape.
func ToRateResponse(r *domain.ExchangeRate) RateResponse {
	return RateResponse{
		RateID:       r.RateID,
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		Bid:          r.Bid,
		Ask:          r.Ask,
		Spread:       r.Spread(),
		ValidFrom:    r.ValidFrom,
		ValidTo:      r.ValidTo,
		Source:       r.Source,
	}
}
