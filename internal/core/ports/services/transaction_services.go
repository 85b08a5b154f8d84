package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// PostingService is the journal engine: it validates transaction drafts and
// applies them atomically under serialisable isolation.
type PostingService interface {
	// Post validates a draft and applies it. A draft with Staged set is
	// persisted as PENDING with no balance or ledger effects. Supplying an
	// idempotency key makes retries return the original transaction.
	Post(ctx context.Context, caller domain.CallContext, draft dto.TransactionDraft, idempotencyKey *string) (*domain.Transaction, error)
	// Approve completes a PENDING transaction, applying its balance and
	// ledger effects as of approval time.
	Approve(ctx context.Context, caller domain.CallContext, transactionID string) (*domain.Transaction, error)
	// Cancel rejects a PENDING transaction. Completed transactions cannot be
	// cancelled, only reversed.
	Cancel(ctx context.Context, caller domain.CallContext, transactionID string, reason string) error
	// Reverse posts a mirror-image transaction for a COMPLETED original and
	// links the two. A transaction can be reversed at most once.
	Reverse(ctx context.Context, caller domain.CallContext, transactionID string, description string, idempotencyKey *string) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, caller domain.CallContext, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, caller domain.CallContext, query dto.LedgerQuery) ([]domain.Transaction, *string, error)
}

// LedgerService serves balance and ledger projections derived from posted
// transactions.
type LedgerService interface {
	// Balance returns an account's balance, either current or as of a past
	// instant replayed from the general ledger.
	Balance(ctx context.Context, caller domain.CallContext, accountID string, asOf *time.Time) (*dto.BalanceResponse, error)
	// Ledger pages through an account's ledger rows, newest first.
	Ledger(ctx context.Context, caller domain.CallContext, query dto.LedgerQuery) (*dto.LedgerPage, error)
	// TrialBalance lists per-account debit and credit totals. Total debits
	// always equal total credits.
	TrialBalance(ctx context.Context, caller domain.CallContext, asOf time.Time) (*dto.TrialBalanceResponse, error)
	// AuditZeroSum sums the signed balances of every account in the tenant
	// as of a date. A healthy ledger always sums to zero.
	AuditZeroSum(ctx context.Context, caller domain.CallContext, asOf time.Time) (decimal.Decimal, error)
}
