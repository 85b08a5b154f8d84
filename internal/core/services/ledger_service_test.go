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
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/core/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	ctx           context.Context
	ledgerRepo    *MockLedgerRepository
	accountRepo   *MockAccountRepository
	reportingRepo *MockReportingRepository
	service       portssvc.LedgerService

	caller domain.CallContext
	asOf   time.Time
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ledgerRepo = new(MockLedgerRepository)
	s.accountRepo = new(MockAccountRepository)
	s.reportingRepo = new(MockReportingRepository)
	s.service = services.NewLedgerService(s.ledgerRepo, s.accountRepo, s.reportingRepo)

	s.caller = domain.CallContext{TenantID: "tenant-1", UserID: "user-1", Role: domain.RoleStaff}
	s.asOf = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
}

func (s *LedgerServiceTestSuite) TestBalanceCurrentUsesCache() {
	account := &domain.Account{
		AccountID:    "acc-cash",
		TenantID:     "tenant-1",
		CurrencyCode: "USD",
		Balance:      decimal.RequireFromString("1234.56"),
		IsActive:     true,
	}
	s.accountRepo.On("FindAccountByID", s.ctx, "tenant-1", "acc-cash").
		Return(account, nil).Once()

	resp, err := s.service.Balance(s.ctx, s.caller, "acc-cash", nil)

	s.Require().NoError(err)
	s.True(resp.Balance.Equal(decimal.RequireFromString("1234.56")))
	s.Equal("USD", resp.Currency)
	s.ledgerRepo.AssertNotCalled(s.T(), "BalanceAsOf",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestBalanceHistoricalReplaysLedger() {
	account := &domain.Account{
		AccountID:    "acc-cash",
		TenantID:     "tenant-1",
		CurrencyCode: "USD",
		Balance:      decimal.RequireFromString("1234.56"),
	}
	s.accountRepo.On("FindAccountByID", s.ctx, "tenant-1", "acc-cash").
		Return(account, nil).Once()
	s.ledgerRepo.On("BalanceAsOf", s.ctx, "tenant-1", "acc-cash", s.asOf).
		Return(decimal.RequireFromString("900.00"), nil).Once()

	resp, err := s.service.Balance(s.ctx, s.caller, "acc-cash", &s.asOf)

	s.Require().NoError(err)
	s.True(resp.Balance.Equal(decimal.RequireFromString("900.00")))
	s.True(resp.AsOf.Equal(s.asOf))
}

func (s *LedgerServiceTestSuite) TestBalanceUnknownAccount() {
	s.accountRepo.On("FindAccountByID", s.ctx, "tenant-1", "acc-missing").
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.Balance(s.ctx, s.caller, "acc-missing", nil)

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestLedgerClampsLimit() {
	s.ledgerRepo.On("ListLedgerRows", s.ctx, "tenant-1",
		mock.MatchedBy(func(f portsrepo.LedgerFilter) bool { return f.Limit == 50 })).
		Return([]domain.LedgerRow{}, nil, nil).Once()

	page, err := s.service.Ledger(s.ctx, s.caller, dto.LedgerQuery{Limit: 5000})

	s.Require().NoError(err)
	s.NotNil(page.Rows)
	s.ledgerRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestTrialBalanceTotals() {
	rows := []domain.TrialBalanceRow{
		{AccountCode: "1000", AccountType: domain.Asset,
			Debit: decimal.NewFromInt(500), Credit: decimal.NewFromInt(100)},
		{AccountCode: "4010", AccountType: domain.Revenue,
			Debit: decimal.NewFromInt(0), Credit: decimal.NewFromInt(400)},
	}
	s.reportingRepo.On("GetTrialBalanceData", s.ctx, "tenant-1", s.asOf).
		Return(rows, nil).Once()

	resp, err := s.service.TrialBalance(s.ctx, s.caller, s.asOf)

	s.Require().NoError(err)
	s.True(resp.TotalDebit.Equal(decimal.NewFromInt(500)))
	s.True(resp.TotalCredit.Equal(decimal.NewFromInt(500)))
	s.Len(resp.Rows, 2)
}

func (s *LedgerServiceTestSuite) TestAuditZeroSumHealthy() {
	totals := map[domain.AccountType]decimal.Decimal{
		domain.Asset:     decimal.NewFromInt(100),
		domain.Expense:   decimal.NewFromInt(20),
		domain.Liability: decimal.NewFromInt(50),
		domain.Equity:    decimal.NewFromInt(30),
		domain.Revenue:   decimal.NewFromInt(40),
	}
	s.ledgerRepo.On("SignedTotalsByType", s.ctx, "tenant-1", s.asOf).
		Return(totals, nil).Once()

	net, err := s.service.AuditZeroSum(s.ctx, s.caller, s.asOf)

	s.Require().NoError(err)
	s.True(net.IsZero(), "expected zero net, got %s", net)
}

func (s *LedgerServiceTestSuite) TestAuditZeroSumDetectsDrift() {
	totals := map[domain.AccountType]decimal.Decimal{
		domain.Asset:   decimal.RequireFromString("100.01"),
		domain.Revenue: decimal.NewFromInt(100),
	}
	s.ledgerRepo.On("SignedTotalsByType", s.ctx, "tenant-1", s.asOf).
		Return(totals, nil).Once()

	net, err := s.service.AuditZeroSum(s.ctx, s.caller, s.asOf)

	s.Require().NoError(err)
	s.True(net.Equal(decimal.RequireFromString("0.01")), "got %s", net)
}

func (s *LedgerServiceTestSuite) TestAuditZeroSumRequiresCapability() {
	customer := domain.CallContext{TenantID: "tenant-1", UserID: "user-3", Role: domain.RoleCustomer}

	_, err := s.service.AuditZeroSum(s.ctx, customer, s.asOf)

	s.ErrorIs(err, apperrors.ErrForbidden)
}
