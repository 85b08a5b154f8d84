package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/core/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

type RateServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	rateRepo     *MockRateRepository
	currencyRepo *MockCurrencyRepository
	service      portssvc.RateService

	caller domain.CallContext
	usd    domain.Currency
	eur    domain.Currency
	now    time.Time
}

func TestRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RateServiceTestSuite))
}

func (s *RateServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.rateRepo = new(MockRateRepository)
	s.currencyRepo = new(MockCurrencyRepository)
	s.service = services.NewRateService(
		s.rateRepo, s.currencyRepo,
		time.Hour, decimal.RequireFromString("0.05"),
	)

	s.caller = domain.CallContext{TenantID: "tenant-1", UserID: "user-1", Role: domain.RoleTenantAdmin}
	s.usd = domain.Currency{CurrencyCode: "USD", DecimalPlaces: 2}
	s.eur = domain.Currency{CurrencyCode: "EUR", DecimalPlaces: 2}
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func (s *RateServiceTestSuite) storedRate(updatedAt time.Time) *domain.ExchangeRate {
	tenantID := "tenant-1"
	rate := &domain.ExchangeRate{
		RateID:       "rate-1",
		TenantID:     &tenantID,
		FromCurrency: "EUR",
		ToCurrency:   "USD",
		Bid:          decimal.RequireFromString("1.08"),
		Ask:          decimal.RequireFromString("1.10"),
		ValidFrom:    updatedAt,
		Source:       domain.RateSourceManual,
	}
	rate.LastUpdatedAt = updatedAt
	return rate
}

func (s *RateServiceTestSuite) setRateRequest() dto.SetRateRequest {
	return dto.SetRateRequest{
		FromCurrency: "EUR",
		ToCurrency:   "USD",
		Bid:          decimal.RequireFromString("1.09"),
		Ask:          decimal.RequireFromString("1.11"),
		ValidFrom:    s.now,
		Source:       domain.RateSourceManual,
		Reason:       "morning fixing",
	}
}

func (s *RateServiceTestSuite) TestSetRatePublishesAndRecordsHistory() {
	prev := s.storedRate(s.now.Add(-30 * time.Minute))

	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "EUR").Return(&s.eur, nil).Once()
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "USD").Return(&s.usd, nil).Once()
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(prev, nil).Once()
	s.rateRepo.On("ReplaceActiveRate", s.ctx,
		mock.MatchedBy(func(rate domain.ExchangeRate) bool {
			return rate.TenantID != nil && *rate.TenantID == "tenant-1" &&
				rate.Bid.Equal(decimal.RequireFromString("1.09")) &&
				rate.ValidFrom.Equal(s.now)
		}),
		mock.MatchedBy(func(change domain.RateChange) bool {
			return change.OldBid != nil && change.OldBid.Equal(prev.Bid) &&
				change.NewBid.Equal(decimal.RequireFromString("1.09")) &&
				change.Reason == "morning fixing"
		})).Return(nil).Once()

	rate, err := s.service.SetRate(s.ctx, s.caller, s.setRateRequest())

	s.Require().NoError(err)
	s.Equal("EUR", rate.FromCurrency)
	s.rateRepo.AssertExpectations(s.T())
}

func (s *RateServiceTestSuite) TestSetRateFirstRateForPair() {
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "EUR").Return(&s.eur, nil).Once()
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "USD").Return(&s.usd, nil).Once()
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(nil, apperrors.ErrNotFound).Once()
	s.rateRepo.On("ReplaceActiveRate", s.ctx, mock.Anything,
		mock.MatchedBy(func(change domain.RateChange) bool {
			return change.OldBid == nil && change.OldAsk == nil
		})).Return(nil).Once()

	_, err := s.service.SetRate(s.ctx, s.caller, s.setRateRequest())

	s.Require().NoError(err)
}

func (s *RateServiceTestSuite) TestSetRatePlatformCallerPublishesGlobal() {
	platform := domain.CallContext{UserID: "admin", Role: domain.RoleSuperAdmin}

	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "EUR").Return(&s.eur, nil).Once()
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "USD").Return(&s.usd, nil).Once()
	s.rateRepo.On("FindCurrentRate", s.ctx, "", "EUR", "USD", s.now).
		Return(nil, apperrors.ErrNotFound).Once()
	s.rateRepo.On("ReplaceActiveRate", s.ctx,
		mock.MatchedBy(func(rate domain.ExchangeRate) bool {
			return rate.TenantID == nil
		}), mock.Anything).Return(nil).Once()

	_, err := s.service.SetRate(s.ctx, platform, s.setRateRequest())

	s.Require().NoError(err)
	s.rateRepo.AssertExpectations(s.T())
}

func (s *RateServiceTestSuite) TestSetRateAskBelowBid() {
	req := s.setRateRequest()
	req.Ask = decimal.RequireFromString("1.05")

	_, err := s.service.SetRate(s.ctx, s.caller, req)

	s.ErrorIs(err, apperrors.ErrValidation)
	s.rateRepo.AssertNotCalled(s.T(), "ReplaceActiveRate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RateServiceTestSuite) TestSetRateNonPositiveBid() {
	req := s.setRateRequest()
	req.Bid = decimal.Zero

	_, err := s.service.SetRate(s.ctx, s.caller, req)

	s.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (s *RateServiceTestSuite) TestSetRateDegeneratePair() {
	req := s.setRateRequest()
	req.ToCurrency = "EUR"

	_, err := s.service.SetRate(s.ctx, s.caller, req)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *RateServiceTestSuite) TestSetRateUnknownCurrency() {
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "EUR").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.SetRate(s.ctx, s.caller, s.setRateRequest())

	s.ErrorIs(err, apperrors.ErrUnknownCurrency)
}

func (s *RateServiceTestSuite) TestSetRateRequiresCapability() {
	customer := domain.CallContext{TenantID: "tenant-1", UserID: "user-2", Role: domain.RoleCustomer}

	_, err := s.service.SetRate(s.ctx, customer, s.setRateRequest())

	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *RateServiceTestSuite) TestSetRateStaffRoutineUpdate() {
	staff := domain.CallContext{TenantID: "tenant-1", UserID: "user-2", Role: domain.RoleStaff}
	prev := s.storedRate(s.now.Add(-30 * time.Minute))

	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "EUR").Return(&s.eur, nil).Once()
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "USD").Return(&s.usd, nil).Once()
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(prev, nil).Once()
	s.rateRepo.On("ReplaceActiveRate", s.ctx, mock.Anything, mock.Anything).
		Return(nil).Once()

	// Previous mid is 1.09; 1.10 moves under 1%, well inside the threshold.
	_, err := s.service.SetRate(s.ctx, staff, s.setRateRequest())

	s.Require().NoError(err)
	s.rateRepo.AssertExpectations(s.T())
}

func (s *RateServiceTestSuite) TestSetRateLargeMoveNeedsApprover() {
	staff := domain.CallContext{TenantID: "tenant-1", UserID: "user-2", Role: domain.RoleStaff}
	prev := s.storedRate(s.now.Add(-30 * time.Minute))

	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "EUR").Return(&s.eur, nil).Once()
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "USD").Return(&s.usd, nil).Once()
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(prev, nil).Once()

	// Mid jumps from 1.09 to 1.21, roughly 11% against a 5% threshold.
	req := s.setRateRequest()
	req.Bid = decimal.RequireFromString("1.20")
	req.Ask = decimal.RequireFromString("1.22")

	_, err := s.service.SetRate(s.ctx, staff, req)

	s.ErrorIs(err, apperrors.ErrForbidden)
	s.rateRepo.AssertNotCalled(s.T(), "ReplaceActiveRate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *RateServiceTestSuite) TestSetRateLargeMoveWithApprover() {
	prev := s.storedRate(s.now.Add(-30 * time.Minute))

	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "EUR").Return(&s.eur, nil).Once()
	s.currencyRepo.On("FindCurrencyByCode", s.ctx, "USD").Return(&s.usd, nil).Once()
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(prev, nil).Once()
	s.rateRepo.On("ReplaceActiveRate", s.ctx, mock.Anything, mock.Anything).
		Return(nil).Once()

	req := s.setRateRequest()
	req.Bid = decimal.RequireFromString("1.20")
	req.Ask = decimal.RequireFromString("1.22")

	_, err := s.service.SetRate(s.ctx, s.caller, req)

	s.Require().NoError(err)
	s.rateRepo.AssertExpectations(s.T())
}

func (s *RateServiceTestSuite) TestCurrentRateFresh() {
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(s.storedRate(s.now.Add(-10*time.Minute)), nil).Once()

	rate, err := s.service.CurrentRate(s.ctx, s.caller, "EUR", "USD", s.now)

	s.Require().NoError(err)
	s.Equal("rate-1", rate.RateID)
}

func (s *RateServiceTestSuite) TestCurrentRateStale() {
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(s.storedRate(s.now.Add(-2*time.Hour)), nil).Once()

	_, err := s.service.CurrentRate(s.ctx, s.caller, "EUR", "USD", s.now)

	s.ErrorIs(err, apperrors.ErrStaleRate)
}

func (s *RateServiceTestSuite) TestCurrentRateUnknownPair() {
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "IRR", "USD", s.now).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.CurrentRate(s.ctx, s.caller, "IRR", "USD", s.now)

	s.ErrorIs(err, apperrors.ErrUnknownPair)
}

func (s *RateServiceTestSuite) TestValidatePostingRateWithinVariance() {
	// Stored mid is 1.09; 1.10 deviates under 1%.
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(s.storedRate(s.now.Add(-10*time.Minute)), nil).Once()

	err := s.service.ValidatePostingRate(s.ctx, s.caller, "EUR", "USD",
		decimal.RequireFromString("1.10"), s.now)

	s.NoError(err)
}

func (s *RateServiceTestSuite) TestValidatePostingRateBeyondVariance() {
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(s.storedRate(s.now.Add(-10*time.Minute)), nil).Once()

	err := s.service.ValidatePostingRate(s.ctx, s.caller, "EUR", "USD",
		decimal.RequireFromString("1.30"), s.now)

	s.ErrorIs(err, apperrors.ErrRateVariance)
}

func (s *RateServiceTestSuite) TestValidatePostingRateNonPositive() {
	err := s.service.ValidatePostingRate(s.ctx, s.caller, "EUR", "USD", decimal.Zero, s.now)

	s.ErrorIs(err, apperrors.ErrInvalidAmount)
	s.rateRepo.AssertNotCalled(s.T(), "FindCurrentRate",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *RateServiceTestSuite) TestValidatePostingRateInversePair() {
	// Only EUR/USD is published; a USD/EUR rate is checked against the
	// inverted mid, 1/1.09.
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "USD", "EUR", s.now).
		Return(nil, apperrors.ErrNotFound).Once()
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(s.storedRate(s.now.Add(-10*time.Minute)), nil).Once()

	err := s.service.ValidatePostingRate(s.ctx, s.caller, "USD", "EUR",
		decimal.RequireFromString("0.92"), s.now)

	s.NoError(err)
}

func (s *RateServiceTestSuite) TestValidatePostingRateInversePairBeyondVariance() {
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "USD", "EUR", s.now).
		Return(nil, apperrors.ErrNotFound).Once()
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(s.storedRate(s.now.Add(-10*time.Minute)), nil).Once()

	err := s.service.ValidatePostingRate(s.ctx, s.caller, "USD", "EUR",
		decimal.RequireFromString("1.05"), s.now)

	s.ErrorIs(err, apperrors.ErrRateVariance)
}

func (s *RateServiceTestSuite) TestValidatePostingRateUnknownBothDirections() {
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "IRR", "USD", s.now).
		Return(nil, apperrors.ErrNotFound).Once()
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "USD", "IRR", s.now).
		Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.ValidatePostingRate(s.ctx, s.caller, "IRR", "USD",
		decimal.NewFromInt(500000), s.now)

	s.ErrorIs(err, apperrors.ErrUnknownPair)
}

func (s *RateServiceTestSuite) TestValidatePostingRateStaleStored() {
	s.rateRepo.On("FindCurrentRate", s.ctx, "tenant-1", "EUR", "USD", s.now).
		Return(s.storedRate(s.now.Add(-2*time.Hour)), nil).Once()

	err := s.service.ValidatePostingRate(s.ctx, s.caller, "EUR", "USD",
		decimal.RequireFromString("1.09"), s.now)

	s.ErrorIs(err, apperrors.ErrStaleRate)
}

func (s *RateServiceTestSuite) TestListRateHistoryEmpty() {
	s.rateRepo.On("ListRateHistory", s.ctx, "tenant-1", "EUR", "USD", 20).
		Return([]domain.RateChange{}, nil).Once()

	history, err := s.service.ListRateHistory(s.ctx, s.caller, "EUR", "USD", 20)

	s.Require().NoError(err)
	s.NotNil(history)
	s.Empty(history)
}

func (s *RateServiceTestSuite) TestListRateHistoryRequiresCapability() {
	customer := domain.CallContext{TenantID: "tenant-1", UserID: "user-3", Role: domain.RoleCustomer}

	_, err := s.service.ListRateHistory(s.ctx, customer, "EUR", "USD", 20)

	s.ErrorIs(err, apperrors.ErrForbidden)
}
