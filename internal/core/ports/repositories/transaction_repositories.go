package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// LedgerFilter narrows ledger listings. NextToken is an opaque cursor over
// (effective_date, seq) descending.
type LedgerFilter struct {
	AccountID *string
	From      *time.Time
	To        *time.Time
	Limit     int
	NextToken *string
}

// TransactionRepository persists journal headers, entries, ledger rows, and
// balances. ApplyPosting and CompletePending run the whole write set inside
// one serialisable database transaction: assign the tenant's next
// transaction number, lock the affected accounts in (tenant_id, account_id)
// order, enforce the overdraft policy, update cached balances, and append
// one ledger row per entry. Nothing is observable on failure.
type TransactionRepository interface {
	// ApplyPosting persists txn with status COMPLETED and all its ledger
	// effects. balanceChanges carries the precomputed signed delta per
	// account. When txn.ReversesID is set the original row is linked back in
	// the same transaction; a second reversal fails with ErrConflict.
	// Returns the stored transaction with its assigned number.
	ApplyPosting(ctx context.Context, txn domain.Transaction, balanceChanges map[string]decimal.Decimal) (*domain.Transaction, error)

	// SaveStaged persists txn with status PENDING: header and entries only,
	// no balance or ledger effects. The transaction number is still assigned.
	SaveStaged(ctx context.Context, txn domain.Transaction) (*domain.Transaction, error)

	// CompletePending transitions a PENDING transaction to COMPLETED and
	// applies its ledger effects, re-reading entries inside the same
	// serialisable transaction. Fails with ErrNotPending otherwise.
	CompletePending(ctx context.Context, tenantID, transactionID, approverID string, balanceChanges map[string]decimal.Decimal, now time.Time) (*domain.Transaction, error)

	// CancelPending marks a PENDING transaction CANCELLED. Fails with
	// ErrNotPending for any other status.
	CancelPending(ctx context.Context, tenantID, transactionID, reason, userID string, now time.Time) error

	// CountTransactionsSince counts a tenant's transactions created at or
	// after the cutoff. Enforces the daily posting limit.
	CountTransactionsSince(ctx context.Context, tenantID string, since time.Time) (int, error)

	FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error)
	FindEntriesByTransactionID(ctx context.Context, tenantID, transactionID string) ([]domain.Entry, error)
	// FindByIdempotencyKey returns the transaction previously recorded for
	// the tenant-scoped key, or ErrNotFound.
	FindByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, tenantID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// LedgerRepository reads the append-only general ledger.
type LedgerRepository interface {
	// BalanceAsOf returns the post-row balance of the last ledger row with
	// effective_date <= asOf, or zero when the account has no rows.
	BalanceAsOf(ctx context.Context, tenantID, accountID string, asOf time.Time) (decimal.Decimal, error)
	ListLedgerRows(ctx context.Context, tenantID string, filter LedgerFilter) ([]domain.LedgerRow, *string, error)
	// SignedTotalsByType returns the sum of signed account balances per
	// account type as of a date, for the zero-sum audit.
	SignedTotalsByType(ctx context.Context, tenantID string, asOf time.Time) (map[domain.AccountType]decimal.Decimal, error)
}
