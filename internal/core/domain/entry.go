package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/apperrors"
)

// Entry is one debit-or-credit line against one account in one currency.
// Exactly one of Debit/Credit is positive; the other is zero. RateToHeader
// converts the entry amount into the header currency and is validated against
// the rate gate at posting time.
type Entry struct {
	EntryID       string          `json:"entryID"` // Primary key (UUID)
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	CurrencyCode  string          `json:"currencyCode"` // Must match the account currency
	RateToHeader  decimal.Decimal `json:"rateToHeader"`
	LineOrder     int             `json:"lineOrder"`
	Memo          string          `json:"memo"`
	AuditFields
}

// Validate checks the per-entry invariant: exactly one side positive,
// neither side negative, and a positive conversion rate.
func (e Entry) Validate() error {
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return fmt.Errorf("%w: debit and credit must be non-negative", apperrors.ErrInvalidAmount)
	}
	debitSet := e.Debit.IsPositive()
	creditSet := e.Credit.IsPositive()
	if debitSet == creditSet {
		return fmt.Errorf("%w: exactly one of debit or credit must be positive", apperrors.ErrInvalidAmount)
	}
	if !e.RateToHeader.IsPositive() {
		return fmt.Errorf("%w: rate to header currency must be positive", apperrors.ErrInvalidAmount)
	}
	return nil
}

// Amount returns the positive side of the entry.
func (e Entry) Amount() decimal.Decimal {
	if e.Debit.IsPositive() {
		return e.Debit
	}
	return e.Credit
}

// IsDebit reports whether the entry debits its account.
func (e Entry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// HeaderDebit returns the debit amount expressed in the header currency.
func (e Entry) HeaderDebit() decimal.Decimal {
	return e.Debit.Mul(e.RateToHeader)
}

// HeaderCredit returns the credit amount expressed in the header currency.
func (e Entry) HeaderCredit() decimal.Decimal {
	return e.Credit.Mul(e.RateToHeader)
}
