package domain

// TenantStatus indicates the lifecycle state of a tenant.
type TenantStatus string

const (
	TenantTrial     TenantStatus = "TRIAL"
	TenantActive    TenantStatus = "ACTIVE"
	TenantSuspended TenantStatus = "SUSPENDED"
	TenantCancelled TenantStatus = "CANCELLED"
)

// Tenant is an isolated organisation owning its own accounts, transactions,
// users, rates, and settings. A tenant with a parent is a branch and inherits
// the parent's chart of accounts and currencies.
type Tenant struct {
	TenantID       string       `json:"tenantID"`  // Primary key (UUID)
	Name           string       `json:"name"`      // Display name
	Slug           string       `json:"slug"`      // Unique, URL-safe identifier
	Status         TenantStatus `json:"status"`    // Lifecycle state
	Plan           string       `json:"plan"`      // Subscription plan name
	BaseCurrency   string       `json:"baseCurrency"`   // ISO-4217; immutable once transactions exist
	ParentTenantID *string      `json:"parentTenantID"` // Non-nil for branches
	Limits         TenantLimits `json:"limits"`
	AuditFields
}

// TenantLimits holds per-tenant feature and usage ceilings.
type TenantLimits struct {
	MaxUsers           int      `json:"maxUsers"`
	MaxDailyPostings   int      `json:"maxDailyPostings"`
	AllowedCurrencies  []string `json:"allowedCurrencies"` // Empty means all registered currencies
}

// CanTransact reports whether the tenant may post new transactions.
func (t Tenant) CanTransact() bool {
	return t.Status == TenantActive || t.Status == TenantTrial
}

// CurrencyAllowed reports whether the tenant may hold accounts in code.
func (t Tenant) CurrencyAllowed(code string) bool {
	if len(t.Limits.AllowedCurrencies) == 0 {
		return true
	}
	for _, c := range t.Limits.AllowedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}
