package services

import (
	portsrepo "github.com/meridianfx/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly wired
// dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Identity = NewIdentityService(repos.UserRepo, repos.TenantRepo, cfg.JWTSecret, cfg.JWTExpiryDuration)
	container.Account = NewAccountService(repos.AccountRepo, repos.CurrencyRepo)
	container.Tenant = NewTenantService(repos.TenantRepo, repos.CurrencyRepo, container.Account)
	container.Rate = NewRateService(repos.RateRepo, repos.CurrencyRepo, cfg.RateMaxAge, cfg.RateMaxVariance)
	container.Currency = NewCurrencyService(repos.CurrencyRepo, container.Rate)
	container.Posting = NewPostingService(
		repos.TransactionRepo,
		repos.AccountRepo,
		repos.TenantRepo,
		repos.CurrencyRepo,
		container.Rate,
		cfg.PostingRetryAttempts,
		cfg.PostingRetryBackoff,
	)
	container.Ledger = NewLedgerService(repos.LedgerRepo, repos.AccountRepo, repos.ReportingRepo)
	container.Recipe = NewRecipeService(container.Posting, container.Rate, repos.AccountRepo, repos.RemittanceRepo)
	container.Reporting = NewReportingService(repos.ReportingRepo)

	return container
}
