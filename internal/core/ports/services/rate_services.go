package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// RateService publishes exchange rates and resolves the rate in force for a
// pair at a point in time.
type RateService interface {
	// SetRate publishes a rate for a pair, truncating the previous active
	// window and recording the change in the rate history.
	SetRate(ctx context.Context, caller domain.CallContext, req dto.SetRateRequest) (*domain.ExchangeRate, error)
	// CurrentRate returns the rate in force at the given instant, falling
	// back from tenant-scoped to global rates. Stale rates are rejected.
	CurrentRate(ctx context.Context, caller domain.CallContext, from, to string, at time.Time) (*domain.ExchangeRate, error)
	// ValidatePostingRate checks a caller-supplied rate against the stored
	// rate for the pair within the configured variance threshold.
	ValidatePostingRate(ctx context.Context, caller domain.CallContext, from, to string, rate decimal.Decimal, at time.Time) error
	ListRateHistory(ctx context.Context, caller domain.CallContext, from, to string, limit int) ([]domain.RateChange, error)
}
