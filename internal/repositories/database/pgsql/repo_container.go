package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgsql repository to the shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(pool)
	return portsrepo.RepositoryProvider{
		TenantRepo:      newPgxTenantRepository(pool),
		UserRepo:        newPgxUserRepository(pool),
		AccountRepo:     accountRepo,
		TransactionRepo: newPgxTransactionRepository(pool, accountRepo),
		LedgerRepo:      newPgxLedgerRepository(pool),
		RateRepo:        newPgxRateRepository(pool),
		CurrencyRepo:    newPgxCurrencyRepository(pool),
		ReportingRepo:   newPgxReportingRepository(pool),
		RemittanceRepo:  newPgxRemittanceRepository(pool),
	}
}
