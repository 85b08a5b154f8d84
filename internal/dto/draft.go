package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// EntryDraft is one candidate journal line. Exactly one of Debit/Credit must
// be positive; CurrencyCode must match the target account's currency.
type EntryDraft struct {
	AccountID    string          `json:"accountID" binding:"required"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	RateToHeader decimal.Decimal `json:"rateToHeader"`
	Memo         string          `json:"memo"`
}

// TransactionDraft is the Journal Engine's input: a candidate balanced
// transaction before validation. Staged requests a PENDING header with no
// ledger effects until approval.
type TransactionDraft struct {
	Kind          domain.TransactionKind `json:"kind" binding:"required"`
	EffectiveDate time.Time              `json:"effectiveDate" binding:"required"`
	Description   string                 `json:"description" binding:"required"`
	Reference     *string                `json:"reference"`
	CurrencyCode  string                 `json:"currencyCode" binding:"required,len=3"`
	Entries       []EntryDraft           `json:"entries" binding:"required,min=2,dive"`
	Metadata      []byte                 `json:"metadata"`
	ReversesID    *string                `json:"reversesID"`
	Staged        bool                   `json:"staged"`
}

// TransactionResponse mirrors a stored journal header.
type TransactionResponse struct {
	TransactionID     string                   `json:"transactionID"`
	TransactionNumber string                   `json:"transactionNumber"`
	Kind              domain.TransactionKind   `json:"kind"`
	EffectiveDate     time.Time                `json:"effectiveDate"`
	Description       string                   `json:"description"`
	Reference         *string                  `json:"reference"`
	Amount            decimal.Decimal          `json:"amount"`
	CurrencyCode      string                   `json:"currencyCode"`
	Status            domain.TransactionStatus `json:"status"`
	ReversesID        *string                  `json:"reversesID,omitempty"`
	ReversedByID      *string                  `json:"reversedByID,omitempty"`
	Entries           []EntryResponse          `json:"entries,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
}

// EntryResponse mirrors a stored journal line.
type EntryResponse struct {
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	CurrencyCode string          `json:"currencyCode"`
	RateToHeader decimal.Decimal `json:"rateToHeader"`
	LineOrder    int             `json:"lineOrder"`
	Memo         string          `json:"memo,omitempty"`
}

// ToTransactionResponse maps a domain transaction to its response shape.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		TransactionID:     t.TransactionID,
		TransactionNumber: t.TransactionNumber,
		Kind:              t.Kind,
		EffectiveDate:     t.EffectiveDate,
		Description:       t.Description,
		Reference:         t.Reference,
		Amount:            t.Amount,
		CurrencyCode:      t.CurrencyCode,
		Status:            t.Status,
		ReversesID:        t.ReversesID,
		ReversedByID:      t.ReversedByID,
		CreatedAt:         t.CreatedAt,
	}
	for _, e := range t.Entries {
		resp.Entries = append(resp.Entries, EntryResponse{
			EntryID:      e.EntryID,
			AccountID:    e.AccountID,
			Debit:        e.Debit,
			Credit:       e.Credit,
			CurrencyCode: e.CurrencyCode,
			RateToHeader: e.RateToHeader,
			LineOrder:    e.LineOrder,
			Memo:         e.Memo,
		})
	}
	return resp
}
