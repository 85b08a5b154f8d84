package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// AccountService manages the chart of accounts for a tenant.
type AccountService interface {
	// CreateAccount adds an account. Code must be unique per (tenant,
	// currency); a parent, when given, must share tenant and type.
	CreateAccount(ctx context.Context, caller domain.CallContext, req dto.CreateAccountRequest) (*domain.Account, error)
	GetAccount(ctx context.Context, caller domain.CallContext, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, caller domain.CallContext, params dto.ListAccountsParams) ([]domain.Account, error)
	// DeactivateAccount retires an account. Rejected while the balance is
	// non-zero or pending entries reference it.
	DeactivateAccount(ctx context.Context, caller domain.CallContext, accountID string) error
	// SeedDefaultChart creates the standard chart for a tenant in its base
	// currency. Idempotent per code.
	SeedDefaultChart(ctx context.Context, caller domain.CallContext, tenantID string, baseCurrency string) error
}

// CurrencyService maintains the currency registry and converts amounts.
type CurrencyService interface {
	RegisterCurrency(ctx context.Context, caller domain.CallContext, currency domain.Currency) error
	GetCurrency(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
	// Convert applies the current rate for the pair and rounds the result to
	// the target currency's precision using banker's rounding. A supplied
	// rate is validated against the stored rate before use.
	Convert(ctx context.Context, caller domain.CallContext, from, to string, amount decimal.Decimal, rate *decimal.Decimal) (decimal.Decimal, error)
}
