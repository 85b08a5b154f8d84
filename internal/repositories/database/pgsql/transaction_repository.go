package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	"github.com/meridianfx/ledger-core/internal/utils/accounting"
	"github.com/meridianfx/ledger-core/internal/utils/pagination"
)

type PgxTransactionRepository struct {
	BaseRepository
	accountRepo portsrepo.AccountRepository
}

// newPgxTransactionRepository creates a new repository for journal headers,
// entries, and the general ledger.
func newPgxTransactionRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepository) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
	}
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

const transactionColumns = `
	transaction_id, tenant_id, transaction_number, kind, effective_date,
	description, reference, amount, currency_code, status, approved_by,
	reverses_id, reversed_by_id, metadata,
	created_at, created_by, last_updated_at, last_updated_by`

// nextTransactionNumber draws the tenant's next sequence number. The counter
// row is upserted atomically, so a number is assigned exactly once and never
// reused even when the surrounding transaction aborts and retries.
func (r *PgxTransactionRepository) nextTransactionNumber(ctx context.Context, tx pgx.Tx, tenantID string) (string, error) {
	query := `
		INSERT INTO transaction_counters (tenant_id, last_seq)
		VALUES ($1, 1)
		ON CONFLICT (tenant_id) DO UPDATE SET last_seq = transaction_counters.last_seq + 1
		RETURNING last_seq;
	`
	var seq int64
	if err := tx.QueryRow(ctx, query, tenantID).Scan(&seq); err != nil {
		return "", mapPgError(err, "failed to advance transaction counter")
	}
	suffix := strings.ToUpper(strings.ReplaceAll(tenantID, "-", ""))
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("TXN-%s-%06d", suffix, seq), nil
}

func (r *PgxTransactionRepository) insertHeader(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.TenantID,
		txn.TransactionNumber,
		txn.Kind,
		txn.EffectiveDate,
		txn.Description,
		txn.Reference,
		txn.Amount,
		txn.CurrencyCode,
		txn.Status,
		txn.ApprovedBy,
		txn.ReversesID,
		txn.ReversedByID,
		txn.Metadata,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to insert transaction "+txn.TransactionID)
	}
	return nil
}

func (r *PgxTransactionRepository) insertEntries(ctx context.Context, tx pgx.Tx, entries []domain.Entry) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO transaction_entries (
			entry_id, transaction_id, account_id, debit, credit, currency_code,
			rate_to_header, line_order, memo,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	for _, e := range entries {
		batch.Queue(query,
			e.EntryID, e.TransactionID, e.AccountID, e.Debit, e.Credit,
			e.CurrencyCode, e.RateToHeader, e.LineOrder, e.Memo,
			e.CreatedAt, e.CreatedBy, e.LastUpdatedAt, e.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range entries {
		if _, err := results.Exec(); err != nil {
			return mapPgError(err, "failed to insert transaction entries")
		}
	}
	return nil
}

// recordIdempotencyKey claims the tenant-scoped key. A unique violation means
// a concurrent posting already claimed it; the whole write set rolls back.
func (r *PgxTransactionRepository) recordIdempotencyKey(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	if txn.IdempotencyKey == nil || *txn.IdempotencyKey == "" {
		return nil
	}
	query := `
		INSERT INTO idempotency_keys (tenant_id, key, transaction_id, created_at)
		VALUES ($1, $2, $3, $4);
	`
	if _, err := tx.Exec(ctx, query, txn.TenantID, *txn.IdempotencyKey, txn.TransactionID, txn.CreatedAt); err != nil {
		return mapPgError(err, "failed to record idempotency key")
	}
	return nil
}

// linkReversal marks the original transaction as reversed. The conditional
// update fails the posting when another reversal got there first.
func (r *PgxTransactionRepository) linkReversal(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	if txn.ReversesID == nil {
		return nil
	}
	query := `
		UPDATE transactions
		SET reversed_by_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND transaction_id = $2
		  AND status = 'COMPLETED' AND reversed_by_id IS NULL;
	`
	tag, err := tx.Exec(ctx, query, txn.TenantID, *txn.ReversesID, txn.TransactionID, txn.LastUpdatedAt, txn.LastUpdatedBy)
	if err != nil {
		return mapPgError(err, "failed to link reversal")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s already reversed or not completed: %w", *txn.ReversesID, apperrors.ErrConflict)
	}
	return nil
}

// applyLedgerEffects locks the affected accounts, enforces the overdraft
// policy, writes the new cached balances, and appends one general ledger row
// per entry with the account's post-row balance.
func (r *PgxTransactionRepository) applyLedgerEffects(ctx context.Context, tx pgx.Tx, txn domain.Transaction, balanceChanges map[string]decimal.Decimal, now time.Time) error {
	accountIDs := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		accountIDs = append(accountIDs, id)
	}
	sort.Strings(accountIDs)

	locked, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, txn.TenantID, accountIDs)
	if err != nil {
		return err
	}

	if err := accounting.ValidateCoverage(locked, balanceChanges); err != nil {
		return err
	}

	balanceQuery := `
		UPDATE accounts
		SET balance = balance + $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND account_id = $2;
	`
	batch := &pgx.Batch{}
	for _, id := range accountIDs {
		batch.Queue(balanceQuery, txn.TenantID, id, balanceChanges[id], now, txn.LastUpdatedBy)
	}
	results := tx.SendBatch(ctx, batch)
	if err := func() error {
		defer results.Close()
		for range accountIDs {
			if _, err := results.Exec(); err != nil {
				return mapPgError(err, "failed to update account balances")
			}
		}
		return nil
	}(); err != nil {
		return err
	}

	// Running balances per account, starting from the pre-posting balance.
	running := make(map[string]decimal.Decimal, len(locked))
	for id, account := range locked {
		running[id] = account.Balance
	}

	ledgerQuery := `
		INSERT INTO general_ledger (
			ledger_row_id, tenant_id, account_id, transaction_id, entry_id,
			effective_date, debit, credit, balance, currency_code, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	ledgerBatch := &pgx.Batch{}
	for _, e := range txn.Entries {
		account := locked[e.AccountID]
		delta, err := accounting.SignedDelta(e, account.AccountType)
		if err != nil {
			return err
		}
		running[e.AccountID] = running[e.AccountID].Add(delta)
		ledgerBatch.Queue(ledgerQuery,
			uuid.NewString(), txn.TenantID, e.AccountID, txn.TransactionID, e.EntryID,
			txn.EffectiveDate, e.Debit, e.Credit, running[e.AccountID], e.CurrencyCode, now,
		)
	}
	ledgerResults := tx.SendBatch(ctx, ledgerBatch)
	defer ledgerResults.Close()
	for range txn.Entries {
		if _, err := ledgerResults.Exec(); err != nil {
			return mapPgError(err, "failed to append general ledger rows")
		}
	}
	return nil
}

func (r *PgxTransactionRepository) ApplyPosting(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) (*domain.Transaction, error) {
	tx, err := r.BeginSerializable(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	number, err := r.nextTransactionNumber(ctx, tx, txn.TenantID)
	if err != nil {
		return nil, err
	}
	txn.TransactionNumber = number
	txn.Status = domain.StatusCompleted

	if err := r.insertHeader(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := r.insertEntries(ctx, tx, txn.Entries); err != nil {
		return nil, err
	}
	if err := r.applyLedgerEffects(ctx, tx, txn, balanceChanges, txn.CreatedAt); err != nil {
		return nil, err
	}
	if err := r.recordIdempotencyKey(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := r.linkReversal(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *PgxTransactionRepository) SaveStaged(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error) {
	tx, err := r.BeginSerializable(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	number, err := r.nextTransactionNumber(ctx, tx, txn.TenantID)
	if err != nil {
		return nil, err
	}
	txn.TransactionNumber = number
	txn.Status = domain.StatusPending

	if err := r.insertHeader(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := r.insertEntries(ctx, tx, txn.Entries); err != nil {
		return nil, err
	}
	if err := r.recordIdempotencyKey(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *PgxTransactionRepository) CompletePending(ctx context.Context, tenantID, transactionID, approverID string, balanceChanges map[string]decimal.Decimal, now time.Time) (*domain.Transaction, error) {
	tx, err := r.BeginSerializable(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	headerQuery := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tenant_id = $1 AND transaction_id = $2
		FOR UPDATE;
	`
	txn, err := scanTransaction(tx.QueryRow(ctx, headerQuery, tenantID, transactionID))
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.StatusPending {
		return nil, fmt.Errorf("transaction %s is %s: %w", transactionID, txn.Status, apperrors.ErrNotPending)
	}

	entries, err := r.findEntriesInTx(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	txn.Entries = entries
	txn.Status = domain.StatusCompleted
	txn.ApprovedBy = &approverID
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = approverID
	// Ledger effects take the approval instant, not the staging one.
	txn.EffectiveDate = now

	updateQuery := `
		UPDATE transactions
		SET status = $3, approved_by = $4, effective_date = $5, last_updated_at = $5, last_updated_by = $4
		WHERE tenant_id = $1 AND transaction_id = $2;
	`
	if _, err := tx.Exec(ctx, updateQuery, tenantID, transactionID, domain.StatusCompleted, approverID, now); err != nil {
		return nil, mapPgError(err, "failed to complete transaction")
	}

	if err := r.applyLedgerEffects(ctx, tx, *txn, balanceChanges, now); err != nil {
		return nil, err
	}
	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *PgxTransactionRepository) CancelPending(ctx context.Context, tenantID, transactionID, reason, userID string, now time.Time) error {
	query := `
		UPDATE transactions
		SET status = $3, cancel_reason = $4, last_updated_at = $5, last_updated_by = $6
		WHERE tenant_id = $1 AND transaction_id = $2 AND status = 'PENDING';
	`
	tag, err := r.Pool.Exec(ctx, query, tenantID, transactionID, domain.StatusCancelled, reason, now, userID)
	if err != nil {
		return mapPgError(err, "failed to cancel transaction")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", transactionID, apperrors.ErrNotPending)
	}
	return nil
}

func (r *PgxTransactionRepository) CountTransactionsSince(ctx context.Context, tenantID string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE tenant_id = $1 AND created_at >= $2;`
	var count int
	if err := r.Pool.QueryRow(ctx, query, tenantID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.TenantID,
		&t.TransactionNumber,
		&t.Kind,
		&t.EffectiveDate,
		&t.Description,
		&t.Reference,
		&t.Amount,
		&t.CurrencyCode,
		&t.Status,
		&t.ApprovedBy,
		&t.ReversesID,
		&t.ReversedByID,
		&t.Metadata,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return &t, nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE tenant_id = $1 AND transaction_id = $2;`
	return scanTransaction(r.Pool.QueryRow(ctx, query, tenantID, transactionID))
}

const entryColumns = `
	entry_id, transaction_id, account_id, debit, credit, currency_code,
	rate_to_header, line_order, memo,
	created_at, created_by, last_updated_at, last_updated_by`

func scanEntries(rows pgx.Rows) ([]domain.Entry, error) {
	defer rows.Close()
	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		err := rows.Scan(
			&e.EntryID, &e.TransactionID, &e.AccountID, &e.Debit, &e.Credit,
			&e.CurrencyCode, &e.RateToHeader, &e.LineOrder, &e.Memo,
			&e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	return entries, nil
}

func (r *PgxTransactionRepository) findEntriesInTx(ctx context.Context, tx pgx.Tx, transactionID string) ([]domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM transaction_entries WHERE transaction_id = $1 ORDER BY line_order;`
	rows, err := tx.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	return scanEntries(rows)
}

func (r *PgxTransactionRepository) FindEntriesByTransactionID(ctx context.Context, tenantID, transactionID string) ([]domain.Entry, error) {
	query := `
		SELECT e.entry_id, e.transaction_id, e.account_id, e.debit, e.credit,
		       e.currency_code, e.rate_to_header, e.line_order, e.memo,
		       e.created_at, e.created_by, e.last_updated_at, e.last_updated_by
		FROM transaction_entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE t.tenant_id = $1 AND e.transaction_id = $2
		ORDER BY e.line_order;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	return scanEntries(rows)
}

func (r *PgxTransactionRepository) FindByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE tenant_id = $1 AND transaction_id = (
			SELECT transaction_id FROM idempotency_keys WHERE tenant_id = $1 AND key = $2
		);
	`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, tenantID, key))
	if err != nil {
		return nil, err
	}
	txn.IdempotencyKey = &key
	return txn, nil
}

func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	query := `SELECT ` + transactionColumns + `, row_num FROM transactions WHERE tenant_id = $1`
	args := []any{tenantID}
	if nextToken != nil && *nextToken != "" {
		createdAt, rowNum, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("bad page token: %w", apperrors.ErrValidation)
		}
		args = append(args, createdAt, rowNum)
		query += fmt.Sprintf(" AND (created_at, row_num) < ($%d, $%d)", len(args)-1, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(" ORDER BY created_at DESC, row_num DESC LIMIT $%d", len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	var rowNums []int64
	for rows.Next() {
		var t domain.Transaction
		var rowNum int64
		err := rows.Scan(
			&t.TransactionID, &t.TenantID, &t.TransactionNumber, &t.Kind, &t.EffectiveDate,
			&t.Description, &t.Reference, &t.Amount, &t.CurrencyCode, &t.Status, &t.ApprovedBy,
			&t.ReversesID, &t.ReversedByID, &t.Metadata,
			&t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy,
			&rowNum,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
		rowNums = append(rowNums, rowNum)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	var next *string
	if len(txns) > limit {
		txns = txns[:limit]
		token := pagination.EncodeToken(txns[limit-1].CreatedAt, rowNums[limit-1])
		next = &token
	}
	return txns, next, nil
}
