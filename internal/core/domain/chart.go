package domain

// ChartEntry is one account template of the default chart of accounts,
// provisioned when a tenant is first initialised. Codes follow a 4-digit
// scheme grouped by type: 1xxx assets, 2xxx liabilities, 3xxx equity,
// 4xxx revenue, 5xxx expenses.
type ChartEntry struct {
	Code          string
	Name          string
	Type          AccountType
	Subtype       *string
	AllowNegative bool
}

func subtype(s string) *string { return &s }

// DefaultChart returns the account templates seeded for a new tenant. Each is
// created in the tenant's base currency; recipes that need other currencies
// create per-currency siblings on demand via the chart service.
func DefaultChart() []ChartEntry {
	return []ChartEntry{
		{Code: "1000", Name: "Cash", Type: Asset, Subtype: subtype("current")},
		{Code: "1100", Name: "Bank", Type: Asset, Subtype: subtype("current")},
		{Code: "1200", Name: "Accounts Receivable", Type: Asset, Subtype: subtype("current")},
		{Code: "1300", Name: "Currency Inventory", Type: Asset, Subtype: subtype("current")},
		// In-transit is a clearing account: sends credit it before receives
		// fund it, so it swings through zero in both directions.
		{Code: "1400", Name: "Remittance In Transit", Type: Asset, Subtype: subtype("current"), AllowNegative: true},
		{Code: "1500", Name: "Fixtures and Equipment", Type: Asset, Subtype: subtype("non_current")},
		{Code: "2000", Name: "Accounts Payable", Type: Liability, Subtype: subtype("current")},
		{Code: "2100", Name: "Salaries Payable", Type: Liability, Subtype: subtype("current")},
		{Code: "2200", Name: "Taxes Payable", Type: Liability, Subtype: subtype("current")},
		{Code: "3000", Name: "Capital", Type: Equity, Subtype: nil},
		{Code: "3100", Name: "Retained Earnings", Type: Equity, Subtype: nil},
		{Code: "4000", Name: "Commission Revenue", Type: Revenue, Subtype: nil},
		{Code: "4100", Name: "Exchange Revenue", Type: Revenue, Subtype: nil},
		{Code: "4200", Name: "Remittance Revenue", Type: Revenue, Subtype: nil},
		{Code: "5000", Name: "Operating Expense", Type: Expense, Subtype: nil},
		{Code: "5100", Name: "Salary Expense", Type: Expense, Subtype: nil},
		{Code: "5200", Name: "Rent", Type: Expense, Subtype: nil},
		{Code: "5300", Name: "Utilities", Type: Expense, Subtype: nil},
	}
}

// Well-known chart codes used by transaction recipes to resolve accounts.
const (
	ChartCash               = "1000"
	ChartBank               = "1100"
	ChartReceivable         = "1200"
	ChartCurrencyInventory  = "1300"
	ChartRemittanceTransit  = "1400"
	ChartPayable            = "2000"
	ChartCommissionRevenue  = "4000"
	ChartExchangeRevenue    = "4100"
	ChartRemittanceRevenue  = "4200"
)
