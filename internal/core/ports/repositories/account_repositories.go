package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// AccountListFilter narrows ListAccounts. Zero values mean no filter.
type AccountListFilter struct {
	Type         domain.AccountType
	CurrencyCode string
	ActiveOnly   bool
	Limit        int
	Offset       int
}

// AccountRepository persists the chart of accounts. All lookups are
// tenant-scoped; an account of another tenant is indistinguishable from a
// missing one.
type AccountRepository interface {
	SaveAccount(ctx context.Context, account domain.Account) error
	SaveAccounts(ctx context.Context, accounts []domain.Account) error
	FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)
	FindAccountByCode(ctx context.Context, tenantID, code, currencyCode string) (*domain.Account, error)
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string, filter AccountListFilter) ([]domain.Account, error)
	DeactivateAccount(ctx context.Context, tenantID, accountID, userID string, now time.Time) error
	// HasPendingEntries reports whether any non-cancelled pending
	// transaction touches the account. Blocks deactivation.
	HasPendingEntries(ctx context.Context, tenantID, accountID string) (bool, error)

	// FindAccountsByIDsForUpdate locks the account rows inside tx. Callers
	// must pass IDs sorted by (tenant_id, account_id) to keep lock order
	// deterministic across concurrent postings.
	FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, accountIDs []string) (map[string]domain.Account, error)
}
