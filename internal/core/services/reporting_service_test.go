package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/core/services"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	ctx           context.Context
	reportingRepo *MockReportingRepository
	service       portssvc.ReportingService

	caller domain.CallContext
	from   time.Time
	to     time.Time
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

func (s *ReportingServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.reportingRepo = new(MockReportingRepository)
	s.service = services.NewReportingService(s.reportingRepo)

	s.caller = domain.CallContext{TenantID: "tenant-1", UserID: "user-1", Role: domain.RoleTenantAdmin}
	s.from = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	s.to = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
}

func (s *ReportingServiceTestSuite) TestProfitAndLossNetsRevenueAgainstExpenses() {
	revenue := []domain.AccountAmount{
		{AccountCode: "4000", Name: "Commission Revenue", NetAmount: decimal.NewFromInt(900)},
		{AccountCode: "4100", Name: "Remittance Fees", NetAmount: decimal.NewFromInt(300)},
	}
	expenses := []domain.AccountAmount{
		{AccountCode: "5000", Name: "Bank Charges", NetAmount: decimal.NewFromInt(450)},
	}
	s.reportingRepo.On("GetProfitAndLossData", s.ctx, "tenant-1", s.from, s.to).
		Return(revenue, expenses, nil).Once()

	report, err := s.service.ProfitAndLoss(s.ctx, s.caller, s.from, s.to)

	s.Require().NoError(err)
	s.True(report.TotalRevenue.Equal(decimal.NewFromInt(1200)))
	s.True(report.TotalExpenses.Equal(decimal.NewFromInt(450)))
	s.True(report.NetProfit.Equal(decimal.NewFromInt(750)))
}

func (s *ReportingServiceTestSuite) TestProfitAndLossEmptyWindow() {
	_, err := s.service.ProfitAndLoss(s.ctx, s.caller, s.to, s.from)

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReportingServiceTestSuite) TestBalanceSheetTotals() {
	assets := []domain.AccountAmount{
		{AccountCode: "1000", Name: "Cash", NetAmount: decimal.NewFromInt(700)},
		{AccountCode: "1300", Name: "Currency Inventory", NetAmount: decimal.NewFromInt(300)},
	}
	liabilities := []domain.AccountAmount{
		{AccountCode: "2000", Name: "Accounts Payable", NetAmount: decimal.NewFromInt(400)},
	}
	equity := []domain.AccountAmount{
		{AccountCode: "3000", Name: "Owner Equity", NetAmount: decimal.NewFromInt(600)},
	}
	s.reportingRepo.On("GetBalanceSheetData", s.ctx, "tenant-1", s.to).
		Return(assets, liabilities, equity, nil).Once()

	report, err := s.service.BalanceSheet(s.ctx, s.caller, s.to)

	s.Require().NoError(err)
	s.True(report.TotalAssets.Equal(decimal.NewFromInt(1000)))
	s.True(report.TotalAssets.Equal(report.TotalLiabilities.Add(report.TotalEquity)))
}

func (s *ReportingServiceTestSuite) TestReportsRequireCapability() {
	customer := domain.CallContext{TenantID: "tenant-1", UserID: "user-3", Role: domain.RoleCustomer}

	_, err := s.service.ProfitAndLoss(s.ctx, customer, s.from, s.to)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.service.BalanceSheet(s.ctx, customer, s.to)
	s.ErrorIs(err, apperrors.ErrForbidden)
}
