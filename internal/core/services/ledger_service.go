package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

type ledgerService struct {
	BaseService
	ledgerRepo    portsrepo.LedgerRepository
	accountRepo   portsrepo.AccountRepository
	reportingRepo portsrepo.ReportingRepository
}

// NewLedgerService creates the balance and ledger projection service.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepository, accountRepo portsrepo.AccountRepository, reportingRepo portsrepo.ReportingRepository) portssvc.LedgerService {
	return &ledgerService{
		ledgerRepo:    ledgerRepo,
		accountRepo:   accountRepo,
		reportingRepo: reportingRepo,
	}
}

var _ portssvc.LedgerService = (*ledgerService)(nil)

// Balance returns the cached balance for current reads and replays the
// general ledger for historical ones.
func (s *ledgerService) Balance(ctx context.Context, caller domain.CallContext, accountID string, asOf *time.Time) (*dto.BalanceResponse, error) {
	if err := caller.Require(domain.CapAccountRead); err != nil {
		return nil, err
	}
	account, err := s.accountRepo.FindAccountByID(ctx, caller.TenantID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if asOf == nil {
		now := time.Now()
		return &dto.BalanceResponse{
			AccountID: accountID,
			Balance:   account.Balance,
			Currency:  account.CurrencyCode,
			AsOf:      now,
		}, nil
	}

	balance, err := s.ledgerRepo.BalanceAsOf(ctx, caller.TenantID, accountID, *asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to replay balance: %w", err)
	}
	return &dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
		Currency:  account.CurrencyCode,
		AsOf:      *asOf,
	}, nil
}

func (s *ledgerService) Ledger(ctx context.Context, caller domain.CallContext, query dto.LedgerQuery) (*dto.LedgerPage, error) {
	if err := caller.Require(domain.CapAccountRead); err != nil {
		return nil, err
	}
	limit := query.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	filter := portsrepo.LedgerFilter{
		AccountID: query.AccountID,
		From:      query.From,
		To:        query.To,
		Limit:     limit,
		NextToken: query.NextToken,
	}
	rows, next, err := s.ledgerRepo.ListLedgerRows(ctx, caller.TenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger rows: %w", err)
	}
	if rows == nil {
		rows = []domain.LedgerRow{}
	}
	return &dto.LedgerPage{Rows: rows, NextToken: next}, nil
}

func (s *ledgerService) TrialBalance(ctx context.Context, caller domain.CallContext, asOf time.Time) (*dto.TrialBalanceResponse, error) {
	if err := caller.Require(domain.CapReportRead); err != nil {
		return nil, err
	}
	rows, err := s.reportingRepo.GetTrialBalanceData(ctx, caller.TenantID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to build trial balance: %w", err)
	}
	resp := &dto.TrialBalanceResponse{
		AsOf:        asOf,
		Rows:        rows,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, row := range rows {
		resp.TotalDebit = resp.TotalDebit.Add(row.Debit)
		resp.TotalCredit = resp.TotalCredit.Add(row.Credit)
	}
	return resp, nil
}

// AuditZeroSum checks the tenant-wide zero-sum invariant: the signed totals
// of debit-normal types must equal those of credit-normal types.
func (s *ledgerService) AuditZeroSum(ctx context.Context, caller domain.CallContext, asOf time.Time) (decimal.Decimal, error) {
	if err := caller.Require(domain.CapReportRead); err != nil {
		return decimal.Zero, err
	}
	totals, err := s.ledgerRepo.SignedTotalsByType(ctx, caller.TenantID, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum signed balances: %w", err)
	}
	net := decimal.Zero
	for t, total := range totals {
		switch t {
		case domain.Asset, domain.Expense:
			net = net.Add(total)
		case domain.Liability, domain.Equity, domain.Revenue:
			net = net.Sub(total)
		}
	}
	return net, nil
}
