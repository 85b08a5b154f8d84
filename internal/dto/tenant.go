package dto

// CreateTenantRequest defines the payload for provisioning a tenant. The
// default chart of accounts is seeded in BaseCurrency.
type CreateTenantRequest struct {
	Name              string   `json:"name" binding:"required,min=1,max=100"`
	Slug              string   `json:"slug" binding:"required,min=2,max=50,alphanum|containsany=-_"`
	Plan              string   `json:"plan"`
	BaseCurrency      string   `json:"baseCurrency" binding:"required,len=3"`
	ParentTenantID    *string  `json:"parentTenantID"`
	MaxUsers          int      `json:"maxUsers"`
	MaxDailyPostings  int      `json:"maxDailyPostings"`
	AllowedCurrencies []string `json:"allowedCurrencies"`
}

// CreateUserRequest defines the payload for creating a tenant user.
type CreateUserRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     string  `json:"role" binding:"required"`
	BranchID *string `json:"branchID"`
}

// LoginRequest authenticates a user within a tenant.
type LoginRequest struct {
	TenantSlug string `json:"tenantSlug" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}
