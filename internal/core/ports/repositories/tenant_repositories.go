package repositories

import (
	"context"

	"github.com/meridianfx/ledger-core/internal/core/domain"
)

// TenantRepository persists tenants and branches.
type TenantRepository interface {
	SaveTenant(ctx context.Context, tenant domain.Tenant) error
	FindTenantByID(ctx context.Context, tenantID string) (*domain.Tenant, error)
	FindTenantBySlug(ctx context.Context, slug string) (*domain.Tenant, error)
	UpdateTenantStatus(ctx context.Context, tenantID string, status domain.TenantStatus, updatedBy string) error
	UpdateBaseCurrency(ctx context.Context, tenantID string, baseCurrency string, updatedBy string) error
	// HasTransactions reports whether any journal header exists for the
	// tenant. Guards the base-currency immutability invariant.
	HasTransactions(ctx context.Context, tenantID string) (bool, error)
}

// UserRepository persists users. Deletes are soft.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, tenantID *string, email string) (*domain.User, error)
	CountUsersByTenant(ctx context.Context, tenantID string) (int, error)
}
