package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow is an append-only projection of one entry's effect on one
// account. Rows for a given account are totally ordered by (EffectiveDate,
// Seq); Balance is the post-row running balance, equal to the sum of signed
// deltas from the account's opening balance. Rows are never updated or
// deleted; corrections are new rows.
type LedgerRow struct {
	LedgerRowID   string          `json:"ledgerRowID"` // Primary key (UUID)
	TenantID      string          `json:"tenantID"`
	AccountID     string          `json:"accountID"`
	TransactionID string          `json:"transactionID"`
	EntryID       string          `json:"entryID"`
	EffectiveDate time.Time       `json:"effectiveDate"`
	Seq           int64           `json:"seq"` // Per-account insertion sequence
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"` // Post-row running balance
	CurrencyCode  string          `json:"currencyCode"`
	CreatedAt     time.Time       `json:"createdAt"`
}
