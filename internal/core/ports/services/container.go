package services

// ServiceContainer bundles every service facade for handler registration.
type ServiceContainer struct {
	Identity  IdentityService
	Tenant    TenantService
	Account   AccountService
	Currency  CurrencyService
	Rate      RateService
	Posting   PostingService
	Ledger    LedgerService
	Recipe    RecipeService
	Reporting ReportingService
}
