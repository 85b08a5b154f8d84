package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
)

type PgxReportingRepository struct {
	BaseRepository
}

// newPgxReportingRepository creates a new repository for financial reports.
// Every query here aggregates general_ledger rows, never the cached account
// balances.
func newPgxReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &PgxReportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

func (r *PgxReportingRepository) GetTrialBalanceData(ctx context.Context, tenantID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(g.debit), 0), COALESCE(SUM(g.credit), 0)
		FROM accounts a
		JOIN general_ledger g
		  ON g.tenant_id = a.tenant_id AND g.account_id = a.account_id
		WHERE a.tenant_id = $1 AND g.effective_date <= $2
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance: %w", err)
	}
	defer rows.Close()

	var result []domain.TrialBalanceRow
	for rows.Next() {
		var tb domain.TrialBalanceRow
		err := rows.Scan(&tb.AccountID, &tb.AccountCode, &tb.AccountName, &tb.AccountType, &tb.Debit, &tb.Credit)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		result = append(result, tb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trial balance rows: %w", err)
	}
	return result, nil
}

func (r *PgxReportingRepository) accountAmounts(ctx context.Context, query string, args ...any) ([]domain.AccountAmount, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report amounts: %w", err)
	}
	defer rows.Close()

	var amounts []domain.AccountAmount
	for rows.Next() {
		var aa domain.AccountAmount
		if err := rows.Scan(&aa.AccountID, &aa.AccountCode, &aa.Name, &aa.Subtype, &aa.NetAmount); err != nil {
			return nil, fmt.Errorf("failed to scan report amount: %w", err)
		}
		amounts = append(amounts, aa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read report amounts: %w", err)
	}
	return amounts, nil
}

// GetProfitAndLossData nets movements over [from, to): credit-normal for
// revenue, debit-normal for expenses.
func (r *PgxReportingRepository) GetProfitAndLossData(ctx context.Context, tenantID string, from, to time.Time) ([]domain.AccountAmount, []domain.AccountAmount, error) {
	const pnlQuery = `
		SELECT a.account_id, a.code, a.name, a.subtype,
		       COALESCE(SUM(CASE WHEN a.account_type = 'REVENUE'
		                         THEN g.credit - g.debit
		                         ELSE g.debit - g.credit END), 0)
		FROM accounts a
		JOIN general_ledger g
		  ON g.tenant_id = a.tenant_id AND g.account_id = a.account_id
		WHERE a.tenant_id = $1 AND a.account_type = $2
		  AND g.effective_date >= $3 AND g.effective_date < $4
		GROUP BY a.account_id, a.code, a.name, a.subtype
		ORDER BY a.code;
	`
	revenue, err := r.accountAmounts(ctx, pnlQuery, tenantID, domain.Revenue, from, to)
	if err != nil {
		return nil, nil, err
	}
	expenses, err := r.accountAmounts(ctx, pnlQuery, tenantID, domain.Expense, from, to)
	if err != nil {
		return nil, nil, err
	}
	return revenue, expenses, nil
}

// GetBalanceSheetData returns each account's last ledger balance as of the
// date, bucketed into assets, liabilities, and equity.
func (r *PgxReportingRepository) GetBalanceSheetData(ctx context.Context, tenantID string, asOf time.Time) ([]domain.AccountAmount, []domain.AccountAmount, []domain.AccountAmount, error) {
	const sheetQuery = `
		SELECT a.account_id, a.code, a.name, a.subtype, l.balance
		FROM accounts a
		JOIN LATERAL (
			SELECT balance
			FROM general_ledger g
			WHERE g.tenant_id = a.tenant_id AND g.account_id = a.account_id
			  AND g.effective_date <= $3
			ORDER BY g.effective_date DESC, g.seq DESC
			LIMIT 1
		) l ON TRUE
		WHERE a.tenant_id = $1 AND a.account_type = $2
		ORDER BY a.code;
	`
	assets, err := r.accountAmounts(ctx, sheetQuery, tenantID, domain.Asset, asOf)
	if err != nil {
		return nil, nil, nil, err
	}
	liabilities, err := r.accountAmounts(ctx, sheetQuery, tenantID, domain.Liability, asOf)
	if err != nil {
		return nil, nil, nil, err
	}
	equity, err := r.accountAmounts(ctx, sheetQuery, tenantID, domain.Equity, asOf)
	if err != nil {
		return nil, nil, nil, err
	}
	return assets, liabilities, equity, nil
}
