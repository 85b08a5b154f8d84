package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `
	account_id, tenant_id, code, name, account_type, subtype, parent_account_id,
	currency_code, balance, frozen_balance, allow_negative, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

const accountInsert = `
	INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`

func accountArgs(a domain.Account) []any {
	return []any{
		a.AccountID,
		a.TenantID,
		a.Code,
		a.Name,
		a.AccountType,
		a.Subtype,
		a.ParentAccountID,
		a.CurrencyCode,
		a.Balance,
		a.FrozenBalance,
		a.AllowNegative,
		a.IsActive,
		a.CreatedAt,
		a.CreatedBy,
		a.LastUpdatedAt,
		a.LastUpdatedBy,
	}
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if _, err := r.Pool.Exec(ctx, accountInsert, accountArgs(account)...); err != nil {
		return mapPgError(err, "failed to save account "+account.AccountID)
	}
	return nil
}

func (r *PgxAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) error {
	batch := &pgx.Batch{}
	for _, a := range accounts {
		batch.Queue(accountInsert, accountArgs(a)...)
	}
	results := r.Pool.SendBatch(ctx, batch)
	defer results.Close()
	for range accounts {
		if _, err := results.Exec(); err != nil {
			return mapPgError(err, "failed to save accounts batch")
		}
	}
	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.AccountID,
		&a.TenantID,
		&a.Code,
		&a.Name,
		&a.AccountType,
		&a.Subtype,
		&a.ParentAccountID,
		&a.CurrencyCode,
		&a.Balance,
		&a.FrozenBalance,
		&a.AllowNegative,
		&a.IsActive,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = $2;`
	return scanAccount(r.Pool.QueryRow(ctx, query, tenantID, accountID))
}

func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code, currencyCode string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = $2 AND currency_code = $3;`
	return scanAccount(r.Pool.QueryRow(ctx, query, tenantID, code, currencyCode))
}

func (r *PgxAccountRepository) collectAccounts(rows pgx.Rows) (map[string]domain.Account, error) {
	defer rows.Close()
	accounts := make(map[string]domain.Account)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts[account.AccountID] = *account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}

func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = ANY($2);`
	rows, err := r.Pool.Query(ctx, query, tenantID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	return r.collectAccounts(rows)
}

// FindAccountsByIDsForUpdate locks the account rows inside tx. IDs are sorted
// before locking so every posting acquires locks in the same order.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	sorted := make([]string, len(accountIDs))
	copy(sorted, accountIDs)
	sort.Strings(sorted)

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND account_id = ANY($2)
		ORDER BY tenant_id, account_id
		FOR UPDATE;`
	rows, err := tx.Query(ctx, query, tenantID, sorted)
	if err != nil {
		return nil, mapPgError(err, "failed to lock accounts")
	}
	accounts, err := r.collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	for _, id := range sorted {
		if _, ok := accounts[id]; !ok {
			return nil, fmt.Errorf("account %s: %w", id, apperrors.ErrUnknownAccount)
		}
	}
	return accounts, nil
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string, filter portsrepo.AccountListFilter) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1`
	args := []any{tenantID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND account_type = $%d", len(args))
	}
	if filter.CurrencyCode != "" {
		args = append(args, filter.CurrencyCode)
		query += fmt.Sprintf(" AND currency_code = $%d", len(args))
	}
	if filter.ActiveOnly {
		query += " AND is_active"
	}
	query += " ORDER BY code, currency_code"
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}

func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, tenantID, accountID, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1 AND account_id = $2 AND is_active;
	`
	tag, err := r.Pool.Exec(ctx, query, tenantID, accountID, now, userID)
	if err != nil {
		return mapPgError(err, "failed to deactivate account")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxAccountRepository) HasPendingEntries(ctx context.Context, tenantID, accountID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM transaction_entries e
			JOIN transactions t ON t.transaction_id = e.transaction_id
			WHERE t.tenant_id = $1 AND e.account_id = $2 AND t.status = 'PENDING'
		);`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending entries: %w", err)
	}
	return exists, nil
}
