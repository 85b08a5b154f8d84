package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meridianfx/ledger-core/internal/core/domain"
	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// tenantHandler handles tenant provisioning and administration.
type tenantHandler struct {
	tenantService   portssvc.TenantService
	identityService portssvc.IdentityService
}

func newTenantHandler(tenantService portssvc.TenantService, identityService portssvc.IdentityService) *tenantHandler {
	return &tenantHandler{
		tenantService:   tenantService,
		identityService: identityService,
	}
}

func (h *tenantHandler) createTenant(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := dto.CreateTenantRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to create tenant")
		return
	}
	c.JSON(http.StatusCreated, tenant)
}

func (h *tenantHandler) getTenant(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	tenant, err := h.tenantService.GetTenant(c.Request.Context(), caller, c.Param("tenantID"))
	if err != nil {
		respondError(c, err, "Failed to get tenant")
		return
	}
	c.JSON(http.StatusOK, tenant)
}

func (h *tenantHandler) setTenantStatus(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := struct {
		Status domain.TenantStatus `json:"status" binding:"required"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.tenantService.SetTenantStatus(c.Request.Context(), caller, c.Param("tenantID"), req.Status); err != nil {
		respondError(c, err, "Failed to update tenant status")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *tenantHandler) updateBaseCurrency(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := struct {
		BaseCurrency string `json:"baseCurrency" binding:"required,len=3"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.tenantService.UpdateBaseCurrency(c.Request.Context(), caller, c.Param("tenantID"), req.BaseCurrency); err != nil {
		respondError(c, err, "Failed to update base currency")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *tenantHandler) createUser(c *gin.Context) {
	caller, ok := callerOrAbort(c)
	if !ok {
		return
	}
	req := dto.CreateUserRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.identityService.CreateUser(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to create user")
		return
	}
	// Never echo the hash back.
	user.PasswordHash = ""
	c.JSON(http.StatusCreated, user)
}

// registerTenantRoutes registers tenant and user administration routes.
func registerTenantRoutes(group *gin.RouterGroup, tenantService portssvc.TenantService, identityService portssvc.IdentityService) {
	handler := newTenantHandler(tenantService, identityService)

	tenants := group.Group("/tenants")
	{
		tenants.POST("", handler.createTenant)
		tenants.GET("/:tenantID", handler.getTenant)
		tenants.PUT("/:tenantID/status", handler.setTenantStatus)
		tenants.PUT("/:tenantID/base-currency", handler.updateBaseCurrency)
	}

	users := group.Group("/users")
	{
		users.POST("", handler.createUser)
	}
}
