package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource indicates where an exchange rate came from.
type RateSource string

const (
	RateSourceManual RateSource = "MANUAL"
	RateSourceAPI    RateSource = "API"
	RateSourceBank   RateSource = "BANK"
	RateSourceMarket RateSource = "MARKET"
)

// ExchangeRate is a tenant-scoped bid/ask quote for a currency pair with a
// validity window. TenantID nil marks a global fallback row used when the
// tenant has no rate of its own. Validity windows for the same pair and
// tenant never overlap while both rows are active.
type ExchangeRate struct {
	RateID       string           `json:"rateID"` // Primary key (UUID)
	TenantID     *string          `json:"tenantID"`
	FromCurrency string           `json:"fromCurrency"`
	ToCurrency   string           `json:"toCurrency"`
	Bid          decimal.Decimal  `json:"bid"`    // Platform buys at
	Ask          decimal.Decimal  `json:"ask"`    // Platform sells at
	VIPBid       *decimal.Decimal `json:"vipBid"` // Overlay applied for VIP callers
	VIPAsk       *decimal.Decimal `json:"vipAsk"`
	ValidFrom    time.Time        `json:"validFrom"`
	ValidTo      *time.Time       `json:"validTo"` // Nil while the window is open-ended
	Source       RateSource       `json:"source"`
	MinAmount    *decimal.Decimal `json:"minAmount"`
	MaxAmount    *decimal.Decimal `json:"maxAmount"`
	DailyLimit   *decimal.Decimal `json:"dailyLimit"`
	AuditFields
}

// Spread is the difference between ask and bid.
func (r ExchangeRate) Spread() decimal.Decimal {
	return r.Ask.Sub(r.Bid)
}

// ActiveAt reports whether the validity window contains t.
func (r ExchangeRate) ActiveAt(t time.Time) bool {
	if t.Before(r.ValidFrom) {
		return false
	}
	return r.ValidTo == nil || t.Before(*r.ValidTo)
}

// EffectiveBid returns the bid for the caller, applying the VIP overlay when
// present and the caller has a VIP tier.
func (r ExchangeRate) EffectiveBid(vip bool) decimal.Decimal {
	if vip && r.VIPBid != nil {
		return *r.VIPBid
	}
	return r.Bid
}

// EffectiveAsk returns the ask for the caller, applying the VIP overlay when
// present and the caller has a VIP tier.
func (r ExchangeRate) EffectiveAsk(vip bool) decimal.Decimal {
	if vip && r.VIPAsk != nil {
		return *r.VIPAsk
	}
	return r.Ask
}

// RateChange is one append-only history record for a rate mutation.
type RateChange struct {
	ChangeID     string           `json:"changeID"` // Primary key (UUID)
	RateID       string           `json:"rateID"`
	TenantID     *string          `json:"tenantID"`
	FromCurrency string           `json:"fromCurrency"`
	ToCurrency   string           `json:"toCurrency"`
	OldBid       *decimal.Decimal `json:"oldBid"`
	OldAsk       *decimal.Decimal `json:"oldAsk"`
	NewBid       decimal.Decimal  `json:"newBid"`
	NewAsk       decimal.Decimal  `json:"newAsk"`
	Reason       string           `json:"reason"`
	ChangedBy    string           `json:"changedBy"`
	ChangedAt    time.Time        `json:"changedAt"`
}
