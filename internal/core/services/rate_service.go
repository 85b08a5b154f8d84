package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

type rateService struct {
	BaseService
	rateRepo     portsrepo.RateRepository
	currencyRepo portsrepo.CurrencyRepository
	maxRateAge   time.Duration   // rates older than this are stale for posting
	maxVariance  decimal.Decimal // relative deviation tolerated from the stored rate
}

// NewRateService creates the rate gate. maxRateAge bounds how old a rate may
// be before postings that depend on it are rejected; maxVariance bounds the
// relative deviation a caller-supplied rate may have from the stored one.
func NewRateService(rateRepo portsrepo.RateRepository, currencyRepo portsrepo.CurrencyRepository, maxRateAge time.Duration, maxVariance decimal.Decimal) portssvc.RateService {
	return &rateService{
		rateRepo:     rateRepo,
		currencyRepo: currencyRepo,
		maxRateAge:   maxRateAge,
		maxVariance:  maxVariance,
	}
}

var _ portssvc.RateService = (*rateService)(nil)

func (s *rateService) SetRate(ctx context.Context, caller domain.CallContext, req dto.SetRateRequest) (*domain.ExchangeRate, error) {
	if err := caller.Require(domain.CapRateWrite); err != nil {
		return nil, err
	}
	if !req.Bid.IsPositive() || !req.Ask.IsPositive() {
		return nil, fmt.Errorf("bid and ask must be positive: %w", apperrors.ErrInvalidAmount)
	}
	if req.Ask.LessThan(req.Bid) {
		return nil, fmt.Errorf("ask %s below bid %s: %w", req.Ask, req.Bid, apperrors.ErrValidation)
	}
	if req.FromCurrency == req.ToCurrency {
		return nil, fmt.Errorf("pair %s/%s is degenerate: %w", req.FromCurrency, req.ToCurrency, apperrors.ErrValidation)
	}
	for _, code := range []string{req.FromCurrency, req.ToCurrency} {
		if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("currency %s: %w", code, apperrors.ErrUnknownCurrency)
			}
			return nil, fmt.Errorf("failed to check currency: %w", err)
		}
	}

	validFrom := req.ValidFrom
	if validFrom.IsZero() {
		validFrom = time.Now()
	}
	if req.ValidTo != nil && !req.ValidTo.After(validFrom) {
		return nil, fmt.Errorf("validTo must follow validFrom: %w", apperrors.ErrValidation)
	}

	var tenantID *string
	if !caller.Role.IsPlatform() {
		id := caller.TenantID
		tenantID = &id
	}

	now := time.Now()
	rate := domain.ExchangeRate{
		RateID:       uuid.NewString(),
		TenantID:     tenantID,
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		Bid:          req.Bid,
		Ask:          req.Ask,
		VIPBid:       req.VIPBid,
		VIPAsk:       req.VIPAsk,
		ValidFrom:    validFrom,
		ValidTo:      req.ValidTo,
		Source:       req.Source,
		MinAmount:    req.MinAmount,
		MaxAmount:    req.MaxAmount,
		DailyLimit:   req.DailyLimit,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     caller.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: caller.UserID,
		},
	}

	change := domain.RateChange{
		ChangeID:     uuid.NewString(),
		RateID:       rate.RateID,
		TenantID:     tenantID,
		FromCurrency: rate.FromCurrency,
		ToCurrency:   rate.ToCurrency,
		NewBid:       rate.Bid,
		NewAsk:       rate.Ask,
		Reason:       req.Reason,
		ChangedBy:    caller.UserID,
		ChangedAt:    now,
	}
	if prev, err := s.rateRepo.FindCurrentRate(ctx, caller.TenantID, rate.FromCurrency, rate.ToCurrency, validFrom); err == nil {
		change.OldBid = &prev.Bid
		change.OldAsk = &prev.Ask
		// A move beyond the variance threshold needs an approver, not just a
		// rate writer.
		oldMid := midPrice(prev.Bid, prev.Ask)
		newMid := midPrice(rate.Bid, rate.Ask)
		deviation := newMid.Sub(oldMid).Abs().Div(oldMid)
		if deviation.GreaterThan(s.maxVariance) {
			if err := caller.Require(domain.CapTransactionApprove); err != nil {
				return nil, fmt.Errorf("rate moves %s from previous mid %s: %w", deviation, oldMid, err)
			}
		}
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to read previous rate: %w", err)
	}

	if err := s.rateRepo.ReplaceActiveRate(ctx, rate, change); err != nil {
		s.LogError(ctx, err, "failed to publish rate",
			slog.String("pair", rate.FromCurrency+"/"+rate.ToCurrency))
		return nil, fmt.Errorf("failed to publish rate: %w", err)
	}
	s.LogInfo(ctx, "rate published",
		slog.String("pair", rate.FromCurrency+"/"+rate.ToCurrency),
		slog.String("bid", rate.Bid.String()), slog.String("ask", rate.Ask.String()))
	return &rate, nil
}

func (s *rateService) CurrentRate(ctx context.Context, caller domain.CallContext, from, to string, at time.Time) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindCurrentRate(ctx, caller.TenantID, from, to, at)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("no rate for %s/%s: %w", from, to, apperrors.ErrUnknownPair)
		}
		return nil, fmt.Errorf("failed to find rate: %w", err)
	}
	if s.maxRateAge > 0 && at.Sub(rate.LastUpdatedAt) > s.maxRateAge {
		return nil, fmt.Errorf("rate for %s/%s last updated %s: %w",
			from, to, rate.LastUpdatedAt.Format(time.RFC3339), apperrors.ErrStaleRate)
	}
	return rate, nil
}

func midPrice(bid, ask decimal.Decimal) decimal.Decimal {
	return bid.Add(ask).Div(decimal.NewFromInt(2))
}

// ValidatePostingRate checks a caller-supplied rate against the stored rate
// for the pair. The supplied rate must sit within maxVariance of the stored
// mid price. When only the opposite direction is published, the stored mid is
// inverted before comparing.
func (s *rateService) ValidatePostingRate(ctx context.Context, caller domain.CallContext, from, to string, rate decimal.Decimal, at time.Time) error {
	if !rate.IsPositive() {
		return fmt.Errorf("rate %s must be positive: %w", rate, apperrors.ErrInvalidAmount)
	}
	var mid decimal.Decimal
	stored, err := s.CurrentRate(ctx, caller, from, to, at)
	switch {
	case err == nil:
		mid = midPrice(stored.Bid, stored.Ask)
	case errors.Is(err, apperrors.ErrUnknownPair):
		inverse, ierr := s.CurrentRate(ctx, caller, to, from, at)
		if ierr != nil {
			return err
		}
		mid = decimal.NewFromInt(1).Div(midPrice(inverse.Bid, inverse.Ask))
	default:
		return err
	}
	deviation := rate.Sub(mid).Abs().Div(mid)
	if deviation.GreaterThan(s.maxVariance) {
		return fmt.Errorf("rate %s deviates %s from stored mid %s: %w",
			rate, deviation, mid, apperrors.ErrRateVariance)
	}
	return nil
}

func (s *rateService) ListRateHistory(ctx context.Context, caller domain.CallContext, from, to string, limit int) ([]domain.RateChange, error) {
	if err := caller.Require(domain.CapReportRead); err != nil {
		return nil, err
	}
	history, err := s.rateRepo.ListRateHistory(ctx, caller.TenantID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate history: %w", err)
	}
	if history == nil {
		history = []domain.RateChange{}
	}
	return history, nil
}
