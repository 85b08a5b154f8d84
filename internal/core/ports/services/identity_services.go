package services

import (
	"context"
	"time"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// IdentityService authenticates users and resolves bearer tokens into a
// caller context.
type IdentityService interface {
	// Login verifies credentials within a tenant and issues a signed token.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// CreateUser provisions a user inside the caller's tenant.
	CreateUser(ctx context.Context, caller domain.CallContext, req dto.CreateUserRequest) (*domain.User, error)
	// Resolve validates a token and returns the caller context it encodes.
	Resolve(ctx context.Context, token string) (*domain.CallContext, error)
	// GenerateToken signs a token for the given user. Exposed for the CLI.
	GenerateToken(user *domain.User, ttl time.Duration) (string, error)
}

// TenantService provisions and administers tenants.
type TenantService interface {
	// CreateTenant provisions a tenant and seeds its default chart of
	// accounts in the tenant's base currency. Platform callers only.
	CreateTenant(ctx context.Context, caller domain.CallContext, req dto.CreateTenantRequest) (*domain.Tenant, error)
	GetTenant(ctx context.Context, caller domain.CallContext, tenantID string) (*domain.Tenant, error)
	// SetTenantStatus moves a tenant between lifecycle states. Suspended and
	// cancelled tenants reject postings but keep reads available.
	SetTenantStatus(ctx context.Context, caller domain.CallContext, tenantID string, status domain.TenantStatus) error
	// UpdateBaseCurrency changes a tenant's base currency. Rejected once the
	// tenant has any transactions.
	UpdateBaseCurrency(ctx context.Context, caller domain.CallContext, tenantID string, baseCurrency string) error
}
