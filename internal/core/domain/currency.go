package domain

import "github.com/shopspring/decimal"

// Currency represents a supported currency and its monetary precision.
// DecimalPlaces bounds every rounding operation involving the currency; no
// amount is persisted with more precision than this.
type Currency struct {
	CurrencyCode  string `json:"currencyCode"` // Primary key, ISO-4217 (plus crypto codes)
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int32  `json:"decimalPlaces"` // IRR 0, USD/EUR/AED/GBP 2, BTC 8
	AuditFields
}

// SmallestUnit returns one minor unit, e.g. 0.01 for USD, 1 for IRR.
func (c Currency) SmallestUnit() decimal.Decimal {
	return decimal.New(1, -c.DecimalPlaces)
}

// BalanceTolerance is the maximum permitted absolute imbalance between total
// debits and credits of a transaction in this currency: half a minor unit.
func (c Currency) BalanceTolerance() decimal.Decimal {
	return c.SmallestUnit().Div(decimal.NewFromInt(2))
}

// Round rounds an amount to the currency's precision using banker's rounding.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundBank(c.DecimalPlaces)
}
