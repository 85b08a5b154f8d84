package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// LedgerQuery narrows general-ledger listings.
type LedgerQuery struct {
	AccountID *string    `form:"accountID"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Limit     int        `form:"limit"`
	NextToken *string    `form:"nextToken"`
}

// LedgerPage is one page of ledger rows, newest first.
type LedgerPage struct {
	Rows      []domain.LedgerRow `json:"rows"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// BalanceResponse is a point-in-time account balance.
type BalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	AsOf      time.Time       `json:"asOf"`
}

// TrialBalanceResponse groups trial balance lines with their totals.
type TrialBalanceResponse struct {
	AsOf        time.Time                `json:"asOf"`
	Rows        []domain.TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal          `json:"totalDebit"`
	TotalCredit decimal.Decimal          `json:"totalCredit"`
}
