package domain

import "time"

// Role is the position of a user inside a tenant. Roles form an ordered
// capability set; a higher role has every capability of the ones below it.
// Super admins are platform-level and belong to no tenant.
type Role string

const (
	RoleSuperAdmin    Role = "SUPER_ADMIN"
	RoleTenantAdmin   Role = "TENANT_ADMIN"
	RoleBranchManager Role = "BRANCH_MANAGER"
	RoleStaff         Role = "STAFF"
	RoleCustomer      Role = "CUSTOMER"
)

// Capability names a single permitted ledger operation.
type Capability string

const (
	CapAccountRead        Capability = "account.read"
	CapAccountWrite       Capability = "account.write"
	CapTransactionCreate  Capability = "transaction.create"
	CapTransactionApprove Capability = "transaction.approve"
	CapTransactionCancel  Capability = "transaction.cancel"
	CapRateWrite          Capability = "rate.write"
	CapReportRead         Capability = "report.read"
)

// roleCapabilities is the fixed role → capability table. Super admin is
// handled in Has and implies everything.
var roleCapabilities = map[Role][]Capability{
	RoleTenantAdmin: {
		CapAccountRead, CapAccountWrite,
		CapTransactionCreate, CapTransactionApprove, CapTransactionCancel,
		CapRateWrite, CapReportRead,
	},
	RoleBranchManager: {
		CapAccountRead, CapAccountWrite,
		CapTransactionCreate, CapTransactionApprove, CapTransactionCancel,
		CapRateWrite, CapReportRead,
	},
	// Staff publish routine rate updates at the counter; moves beyond the
	// variance threshold additionally need transaction.approve.
	RoleStaff: {
		CapAccountRead,
		CapTransactionCreate,
		CapRateWrite, CapReportRead,
	},
	RoleCustomer: {
		CapAccountRead,
	},
}

// Has reports whether the role carries the capability.
func (r Role) Has(c Capability) bool {
	if r == RoleSuperAdmin {
		return true
	}
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTenantAdmin, RoleBranchManager, RoleStaff, RoleCustomer:
		return true
	}
	return false
}

// IsPlatform reports whether the role is platform-level and exempt from
// tenant filtering.
func (r Role) IsPlatform() bool {
	return r == RoleSuperAdmin
}

// User represents an authenticated principal. TenantID is nil only for the
// platform super administrator.
type User struct {
	UserID       string  `json:"userID"` // Primary key (UUID)
	TenantID     *string `json:"tenantID"`
	BranchID     *string `json:"branchID"` // Optional branch binding
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Role         Role    `json:"role"`
	VIPTier      *string `json:"vipTier"` // Enables VIP rate overlays at posting
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Soft delete
}
