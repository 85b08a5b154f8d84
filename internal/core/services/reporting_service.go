package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
)

type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates the financial statements service. Reports read
// the general ledger directly, never the cached balances.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) portssvc.ReportingService {
	return &reportingService{reportingRepo: reportingRepo}
}

var _ portssvc.ReportingService = (*reportingService)(nil)

func sumAmounts(rows []domain.AccountAmount) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.NetAmount)
	}
	return total
}

func (s *reportingService) ProfitAndLoss(ctx context.Context, caller domain.CallContext, from, to time.Time) (*domain.PAndLReport, error) {
	if err := caller.Require(domain.CapReportRead); err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, fmt.Errorf("report window must end after it starts: %w", apperrors.ErrValidation)
	}
	revenue, expenses, err := s.reportingRepo.GetProfitAndLossData(ctx, caller.TenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build profit and loss: %w", err)
	}
	report := &domain.PAndLReport{
		Revenue:       revenue,
		Expenses:      expenses,
		TotalRevenue:  sumAmounts(revenue),
		TotalExpenses: sumAmounts(expenses),
	}
	report.NetProfit = report.TotalRevenue.Sub(report.TotalExpenses)
	return report, nil
}

func (s *reportingService) BalanceSheet(ctx context.Context, caller domain.CallContext, asOf time.Time) (*domain.BalanceSheetReport, error) {
	if err := caller.Require(domain.CapReportRead); err != nil {
		return nil, err
	}
	assets, liabilities, equity, err := s.reportingRepo.GetBalanceSheetData(ctx, caller.TenantID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to build balance sheet: %w", err)
	}
	return &domain.BalanceSheetReport{
		Assets:           assets,
		Liabilities:      liabilities,
		Equity:           equity,
		TotalAssets:      sumAmounts(assets),
		TotalLiabilities: sumAmounts(liabilities),
		TotalEquity:      sumAmounts(equity),
	}, nil
}
