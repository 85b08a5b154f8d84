package dto

import (
	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// CreateAccountRequest defines the payload for creating a new account.
type CreateAccountRequest struct {
	Code            string             `json:"code" binding:"required,min=1,max=16"`
	Name            string             `json:"name" binding:"required,min=1,max=100"`
	AccountType     domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Subtype         *string            `json:"subtype"`
	CurrencyCode    string             `json:"currencyCode" binding:"required,len=3"`
	ParentAccountID *string            `json:"parentAccountID"`
}

// ListAccountsParams narrows account listings.
type ListAccountsParams struct {
	Type         string `form:"type"`
	CurrencyCode string `form:"currency"`
	ActiveOnly   bool   `form:"activeOnly"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

// AccountResponse mirrors a stored account.
type AccountResponse struct {
	AccountID     string             `json:"accountID"`
	Code          string             `json:"code"`
	Name          string             `json:"name"`
	AccountType   domain.AccountType `json:"accountType"`
	Subtype       *string            `json:"subtype,omitempty"`
	CurrencyCode  string             `json:"currencyCode"`
	Balance       decimal.Decimal    `json:"balance"`
	FrozenBalance decimal.Decimal    `json:"frozenBalance"`
	IsActive      bool               `json:"isActive"`
}

// ToAccountResponse maps a domain account to its response shape.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     a.AccountID,
		Code:          a.Code,
		Name:          a.Name,
		AccountType:   a.AccountType,
		Subtype:       a.Subtype,
		CurrencyCode:  a.CurrencyCode,
		Balance:       a.Balance,
		FrozenBalance: a.FrozenBalance,
		IsActive:      a.IsActive,
	}
}
