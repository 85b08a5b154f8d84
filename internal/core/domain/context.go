package domain

import (
	"fmt"

	"github.com/meridianfx/ledger-core/internal/apperrors"
)

// CallContext is the identity envelope every ledger operation carries. No
// read or write executes without one; every query filters by TenantID unless
// the role is platform-level.
type CallContext struct {
	TenantID string
	BranchID *string
	UserID   string
	Role     Role
	VIPTier  *string
}

// Require returns ErrForbidden when the caller lacks the capability.
func (c CallContext) Require(cap Capability) error {
	if !c.Role.Has(cap) {
		return fmt.Errorf("%w: role %s lacks %s", apperrors.ErrForbidden, c.Role, cap)
	}
	return nil
}

// SameTenant reports whether tenantID is visible to the caller. Platform
// roles see every tenant.
func (c CallContext) SameTenant(tenantID string) bool {
	if c.Role.IsPlatform() {
		return true
	}
	return c.TenantID == tenantID
}
