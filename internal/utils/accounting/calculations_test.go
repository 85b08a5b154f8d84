package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianfx/ledger-core/internal/apperrors"
	"github.com/meridianfx/ledger-core/internal/core/domain"
	"github.com/meridianfx/ledger-core/internal/utils/accounting"
)

func debitEntry(accountID string, amount string, rate string) domain.Entry {
	return domain.Entry{
		AccountID:    accountID,
		Debit:        decimal.RequireFromString(amount),
		CurrencyCode: "USD",
		RateToHeader: decimal.RequireFromString(rate),
	}
}

func creditEntry(accountID string, amount string, rate string) domain.Entry {
	return domain.Entry{
		AccountID:    accountID,
		Credit:       decimal.RequireFromString(amount),
		CurrencyCode: "USD",
		RateToHeader: decimal.RequireFromString(rate),
	}
}

func TestSignedDelta(t *testing.T) {
	tests := []struct {
		name        string
		entry       domain.Entry
		accountType domain.AccountType
		want        string
	}{
		{"debit grows asset", debitEntry("a", "100", "1"), domain.Asset, "100"},
		{"credit shrinks asset", creditEntry("a", "40", "1"), domain.Asset, "-40"},
		{"debit grows expense", debitEntry("a", "25", "1"), domain.Expense, "25"},
		{"credit grows liability", creditEntry("a", "70", "1"), domain.Liability, "70"},
		{"debit shrinks liability", debitEntry("a", "70", "1"), domain.Liability, "-70"},
		{"credit grows equity", creditEntry("a", "500", "1"), domain.Equity, "500"},
		{"credit grows revenue", creditEntry("a", "12.34", "1"), domain.Revenue, "12.34"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, err := accounting.SignedDelta(tt.entry, tt.accountType)
			require.NoError(t, err)
			assert.True(t, delta.Equal(decimal.RequireFromString(tt.want)),
				"want %s, got %s", tt.want, delta)
		})
	}
}

func TestSignedDeltaUnknownType(t *testing.T) {
	_, err := accounting.SignedDelta(debitEntry("a", "1", "1"), domain.AccountType("CONTRA"))
	assert.Error(t, err)
}

func TestHeaderImbalanceConvertsThroughRates(t *testing.T) {
	// 92 EUR at 1.10 debits 101.2 in header terms against a 101.2 credit.
	entries := []domain.Entry{
		debitEntry("eur", "92", "1.10"),
		creditEntry("usd", "101.2", "1"),
	}
	imbalance := accounting.HeaderImbalance(entries)
	assert.True(t, imbalance.IsZero(), "got %s", imbalance)
}

func TestValidateBalanced(t *testing.T) {
	usd := domain.Currency{CurrencyCode: "USD", DecimalPlaces: 2}

	t.Run("balanced", func(t *testing.T) {
		entries := []domain.Entry{
			debitEntry("a", "100", "1"),
			creditEntry("b", "100", "1"),
		}
		assert.NoError(t, accounting.ValidateBalanced(entries, usd))
	})

	t.Run("imbalance within half smallest unit", func(t *testing.T) {
		entries := []domain.Entry{
			debitEntry("a", "100", "1"),
			creditEntry("b", "99.996", "1"),
		}
		assert.NoError(t, accounting.ValidateBalanced(entries, usd))
	})

	t.Run("imbalance beyond tolerance", func(t *testing.T) {
		entries := []domain.Entry{
			debitEntry("a", "100", "1"),
			creditEntry("b", "99.99", "1"),
		}
		err := accounting.ValidateBalanced(entries, usd)
		assert.ErrorIs(t, err, apperrors.ErrUnbalanced)
	})

	t.Run("zero-decimal currency uses its own tolerance", func(t *testing.T) {
		irr := domain.Currency{CurrencyCode: "IRR", DecimalPlaces: 0}
		entries := []domain.Entry{
			debitEntry("a", "1000000", "1"),
			creditEntry("b", "999999.6", "1"),
		}
		assert.NoError(t, accounting.ValidateBalanced(entries, irr))
	})

	t.Run("single entry", func(t *testing.T) {
		entries := []domain.Entry{debitEntry("a", "100", "1")}
		err := accounting.ValidateBalanced(entries, usd)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("entry with both sides set", func(t *testing.T) {
		bad := domain.Entry{
			AccountID:    "a",
			Debit:        decimal.NewFromInt(10),
			Credit:       decimal.NewFromInt(10),
			RateToHeader: decimal.NewFromInt(1),
		}
		entries := []domain.Entry{bad, creditEntry("b", "10", "1")}
		err := accounting.ValidateBalanced(entries, usd)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	})
}

func TestNetChanges(t *testing.T) {
	entries := []domain.Entry{
		debitEntry("cash", "100", "1"),
		creditEntry("cash", "30", "1"),
		creditEntry("revenue", "70", "1"),
	}
	types := map[string]domain.AccountType{
		"cash":    domain.Asset,
		"revenue": domain.Revenue,
	}

	changes, err := accounting.NetChanges(entries, types)

	require.NoError(t, err)
	assert.True(t, changes["cash"].Equal(decimal.NewFromInt(70)), "got %s", changes["cash"])
	assert.True(t, changes["revenue"].Equal(decimal.NewFromInt(70)), "got %s", changes["revenue"])
}

func TestValidateCoverage(t *testing.T) {
	asset := func(balance, frozen string) domain.Account {
		return domain.Account{
			AccountType:   domain.Asset,
			Balance:       decimal.RequireFromString(balance),
			FrozenBalance: decimal.RequireFromString(frozen),
		}
	}
	change := func(amount string) map[string]decimal.Decimal {
		return map[string]decimal.Decimal{"a": decimal.RequireFromString(amount)}
	}

	t.Run("frozen funds cannot be spent", func(t *testing.T) {
		// Balance 100 with 40 frozen leaves 60 available.
		accounts := map[string]domain.Account{"a": asset("100", "40")}
		err := accounting.ValidateCoverage(accounts, change("-70"))
		assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
	})

	t.Run("available funds spend fully", func(t *testing.T) {
		accounts := map[string]domain.Account{"a": asset("100", "40")}
		assert.NoError(t, accounting.ValidateCoverage(accounts, change("-60")))
	})

	t.Run("clearing account may run negative", func(t *testing.T) {
		account := asset("0", "0")
		account.AllowNegative = true
		accounts := map[string]domain.Account{"a": account}
		assert.NoError(t, accounting.ValidateCoverage(accounts, change("-500")))
	})

	t.Run("liability accounts are not gated", func(t *testing.T) {
		accounts := map[string]domain.Account{"a": {
			AccountType: domain.Liability,
			Balance:     decimal.Zero,
		}}
		assert.NoError(t, accounting.ValidateCoverage(accounts, change("-500")))
	})

	t.Run("unloaded account", func(t *testing.T) {
		err := accounting.ValidateCoverage(map[string]domain.Account{}, change("-1"))
		assert.ErrorIs(t, err, apperrors.ErrUnknownAccount)
	})
}

func TestNetChangesMissingAccountType(t *testing.T) {
	entries := []domain.Entry{debitEntry("ghost", "1", "1")}

	_, err := accounting.NetChanges(entries, map[string]domain.AccountType{})

	assert.ErrorIs(t, err, apperrors.ErrUnknownAccount)
}
