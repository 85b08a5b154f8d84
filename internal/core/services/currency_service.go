package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
)

type currencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepository
	rateSvc      portssvc.RateService
}

// NewCurrencyService creates the currency registry service. The rate service
// resolves pair rates for Convert.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepository, rateSvc portssvc.RateService) portssvc.CurrencyService {
	return &currencyService{currencyRepo: currencyRepo, rateSvc: rateSvc}
}

var _ portssvc.CurrencyService = (*currencyService)(nil)

func (s *currencyService) RegisterCurrency(ctx context.Context, caller domain.CallContext, currency domain.Currency) error {
	if !caller.Role.IsPlatform() {
		return fmt.Errorf("currency registry is platform-only: %w", apperrors.ErrForbidden)
	}
	if len(currency.CurrencyCode) != 3 {
		return fmt.Errorf("currency code %q must be 3 letters: %w", currency.CurrencyCode, apperrors.ErrValidation)
	}
	if currency.DecimalPlaces < 0 || currency.DecimalPlaces > 8 {
		return fmt.Errorf("decimal places %d out of range: %w", currency.DecimalPlaces, apperrors.ErrValidation)
	}
	now := time.Now()
	currency.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     caller.UserID,
		LastUpdatedAt: now,
		LastUpdatedBy: caller.UserID,
	}
	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("currency %s already registered: %w", currency.CurrencyCode, apperrors.ErrDuplicate)
		}
		return fmt.Errorf("failed to save currency: %w", err)
	}
	return nil
}

func (s *currencyService) GetCurrency(ctx context.Context, code string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("currency %s: %w", code, apperrors.ErrUnknownCurrency)
		}
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return currency, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		currencies = []domain.Currency{}
	}
	return currencies, nil
}

// Convert applies the ask side of the current rate for from→to and rounds the
// result to the target currency's precision with banker's rounding. A
// caller-supplied rate is validated against the stored rate before use. Same
// currency converts at identity without a rate lookup.
func (s *currencyService) Convert(ctx context.Context, caller domain.CallContext, from, to string, amount decimal.Decimal, rate *decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount %s must be positive: %w", amount, apperrors.ErrInvalidAmount)
	}
	target, err := s.GetCurrency(ctx, to)
	if err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return target.Round(amount), nil
	}
	if _, err := s.GetCurrency(ctx, from); err != nil {
		return decimal.Zero, err
	}

	if rate != nil {
		if err := s.rateSvc.ValidatePostingRate(ctx, caller, from, to, *rate, time.Now()); err != nil {
			return decimal.Zero, err
		}
		return target.Round(amount.Mul(*rate)), nil
	}

	stored, err := s.rateSvc.CurrentRate(ctx, caller, from, to, time.Now())
	if err != nil {
		return decimal.Zero, err
	}
	// Intermediate math keeps full precision; only the final amount rounds.
	converted := amount.Mul(stored.EffectiveAsk(caller.VIPTier != nil))
	return target.Round(converted), nil
}
