package repositories

import (
	"context"
	"time"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// RateRepository persists exchange rates and their change history.
type RateRepository interface {
	// ReplaceActiveRate truncates the currently active window for the pair
	// (if any), inserts the new rate, and appends the change record, all in
	// one serialisable transaction so windows never overlap.
	ReplaceActiveRate(ctx context.Context, rate domain.ExchangeRate, change domain.RateChange) error

	// FindCurrentRate returns the rate whose validity window contains at,
	// preferring a tenant-scoped row and falling back to the global row.
	FindCurrentRate(ctx context.Context, tenantID, fromCurrency, toCurrency string, at time.Time) (*domain.ExchangeRate, error)

	ListRateHistory(ctx context.Context, tenantID, fromCurrency, toCurrency string, limit int) ([]domain.RateChange, error)
}

// CurrencyRepository persists the currency registry.
type CurrencyRepository interface {
	SaveCurrency(ctx context.Context, currency domain.Currency) error
	FindCurrencyByCode(ctx context.Context, code string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}
