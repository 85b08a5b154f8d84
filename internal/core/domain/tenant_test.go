package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

func TestTenantCanTransact(t *testing.T) {
	tests := []struct {
		status domain.TenantStatus
		want   bool
	}{
		{domain.TenantTrial, true},
		{domain.TenantActive, true},
		{domain.TenantSuspended, false},
		{domain.TenantCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			tenant := domain.Tenant{Status: tt.status}
			assert.Equal(t, tt.want, tenant.CanTransact())
		})
	}
}

func TestTenantCurrencyAllowed(t *testing.T) {
	unrestricted := domain.Tenant{}
	assert.True(t, unrestricted.CurrencyAllowed("USD"))
	assert.True(t, unrestricted.CurrencyAllowed("XYZ"))

	restricted := domain.Tenant{
		Limits: domain.TenantLimits{AllowedCurrencies: []string{"USD", "EUR"}},
	}
	assert.True(t, restricted.CurrencyAllowed("USD"))
	assert.False(t, restricted.CurrencyAllowed("GBP"))
}
