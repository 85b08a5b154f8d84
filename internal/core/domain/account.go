package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account. The type
// never changes after creation and drives the posting sign rule.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// ValidAccountType reports whether t is one of the five known types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account is a single-currency ledger account of a fixed type, owned by
// exactly one tenant. Multi-currency positions are represented by multiple
// accounts. Balance is derived from the ledger but cached here and maintained
// under row locks during posting.
type Account struct {
	AccountID       string          `json:"accountID"` // Primary key (UUID)
	TenantID        string          `json:"tenantID"`
	Code            string          `json:"code"` // Unique within tenant, 4-digit scheme
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	Subtype         *string         `json:"subtype"`         // e.g. "current", "non_current"
	ParentAccountID *string         `json:"parentAccountID"` // Same tenant, same type
	CurrencyCode    string          `json:"currencyCode"`    // Never changes
	Balance         decimal.Decimal `json:"balance"`         // Cached running balance
	FrozenBalance   decimal.Decimal `json:"frozenBalance"`   // Reserved, unavailable portion
	AllowNegative   bool            `json:"allowNegative"`   // Clearing accounts may run negative
	IsActive        bool            `json:"isActive"`
	AuditFields
}

// Available returns the balance usable for new postings under the default
// non-negative overdraft policy.
func (a Account) Available() decimal.Decimal {
	return a.Balance.Sub(a.FrozenBalance)
}
