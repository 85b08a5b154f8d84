package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	"github.com/meridianfx/ledger-core/internal/utils/pagination"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new read-side repository for the general
// ledger.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepository {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LedgerRepository = (*PgxLedgerRepository)(nil)

func (r *PgxLedgerRepository) BalanceAsOf(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error) {
	query := `
		SELECT balance
		FROM general_ledger
		WHERE tenant_id = $1 AND account_id = $2 AND effective_date <= $3
		ORDER BY effective_date DESC, seq DESC
		LIMIT 1;
	`
	var balance decimal.Decimal
	err := r.Pool.QueryRow(ctx, query, tenantID, accountID, asOf).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No activity before asOf means a zero balance, not an error.
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to replay balance: %w", err)
	}
	return balance, nil
}

func (r *PgxLedgerRepository) ListLedgerRows(ctx context.Context, tenantID string, filter portsrepo.LedgerFilter) ([]domain.LedgerRow, *string, error) {
	query := `
		SELECT ledger_row_id, tenant_id, account_id, transaction_id, entry_id,
		       effective_date, seq, debit, credit, balance, currency_code, created_at
		FROM general_ledger
		WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND effective_date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND effective_date < $%d", len(args))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		effectiveDate, seq, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("bad page token: %w", apperrors.ErrValidation)
		}
		args = append(args, effectiveDate, seq)
		query += fmt.Sprintf(" AND (effective_date, seq) < ($%d, $%d)", len(args)-1, len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY effective_date DESC, seq DESC LIMIT $%d", len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list ledger rows: %w", err)
	}
	defer rows.Close()

	var ledgerRows []domain.LedgerRow
	for rows.Next() {
		var lr domain.LedgerRow
		err := rows.Scan(
			&lr.LedgerRowID, &lr.TenantID, &lr.AccountID, &lr.TransactionID, &lr.EntryID,
			&lr.EffectiveDate, &lr.Seq, &lr.Debit, &lr.Credit, &lr.Balance, &lr.CurrencyCode, &lr.CreatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}
		ledgerRows = append(ledgerRows, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read ledger rows: %w", err)
	}

	var next *string
	if len(ledgerRows) > limit {
		ledgerRows = ledgerRows[:limit]
		last := ledgerRows[limit-1]
		token := pagination.EncodeToken(last.EffectiveDate, last.Seq)
		next = &token
	}
	return ledgerRows, next, nil
}

// SignedTotalsByType picks each account's last ledger balance as of the date
// and sums those balances per account type.
func (r *PgxLedgerRepository) SignedTotalsByType(ctx context.Context, tenantID string, asOf time.Time) (map[domain.AccountType]decimal.Decimal, error) {
	query := `
		SELECT a.account_type, COALESCE(SUM(l.balance), 0)
		FROM accounts a
		JOIN LATERAL (
			SELECT balance
			FROM general_ledger g
			WHERE g.tenant_id = a.tenant_id AND g.account_id = a.account_id
			  AND g.effective_date <= $2
			ORDER BY g.effective_date DESC, g.seq DESC
			LIMIT 1
		) l ON TRUE
		WHERE a.tenant_id = $1
		GROUP BY a.account_type;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to sum signed balances: %w", err)
	}
	defer rows.Close()

	totals := make(map[domain.AccountType]decimal.Decimal)
	for rows.Next() {
		var accountType domain.AccountType
		var total decimal.Decimal
		if err := rows.Scan(&accountType, &total); err != nil {
			return nil, fmt.Errorf("failed to scan signed total: %w", err)
		}
		totals[accountType] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read signed totals: %w", err)
	}
	return totals, nil
}
