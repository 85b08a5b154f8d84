package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

func TestCurrencySmallestUnit(t *testing.T) {
	usd := domain.Currency{CurrencyCode: "USD", DecimalPlaces: 2}
	irr := domain.Currency{CurrencyCode: "IRR", DecimalPlaces: 0}
	btc := domain.Currency{CurrencyCode: "BTC", DecimalPlaces: 8}

	assert.True(t, usd.SmallestUnit().Equal(decimal.RequireFromString("0.01")))
	assert.True(t, irr.SmallestUnit().Equal(decimal.NewFromInt(1)))
	assert.True(t, btc.SmallestUnit().Equal(decimal.RequireFromString("0.00000001")))
}

func TestCurrencyBalanceTolerance(t *testing.T) {
	usd := domain.Currency{CurrencyCode: "USD", DecimalPlaces: 2}

	assert.True(t, usd.BalanceTolerance().Equal(decimal.RequireFromString("0.005")))
}

func TestCurrencyRoundUsesBankersRounding(t *testing.T) {
	usd := domain.Currency{CurrencyCode: "USD", DecimalPlaces: 2}

	// Ties go to the even neighbour.
	assert.True(t, usd.Round(decimal.RequireFromString("2.125")).Equal(decimal.RequireFromString("2.12")))
	assert.True(t, usd.Round(decimal.RequireFromString("2.135")).Equal(decimal.RequireFromString("2.14")))
	assert.True(t, usd.Round(decimal.RequireFromString("2.131")).Equal(decimal.RequireFromString("2.13")))
}
