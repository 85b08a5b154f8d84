package repositories

// RepositoryProvider bundles every repository implementation handed to the
// service layer.
type RepositoryProvider struct {
	TenantRepo      TenantRepository
	UserRepo        UserRepository
	AccountRepo     AccountRepository
	TransactionRepo TransactionRepository
	LedgerRepo      LedgerRepository
	RateRepo        RateRepository
	CurrencyRepo    CurrencyRepository
	ReportingRepo   ReportingRepository
	RemittanceRepo  RemittanceRepository
}
