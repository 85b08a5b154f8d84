package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/dto"
)

// authHandler handles login requests.
type authHandler struct {
	identityService portssvc.IdentityService
}

func newAuthHandler(identityService portssvc.IdentityService) *authHandler {
	return &authHandler{identityService: identityService}
}

// login authenticates a user within a tenant and returns a bearer token.
// Every failure mode reads the same to the caller.
func (h *authHandler) login(c *gin.Context) {
	req := dto.LoginRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.identityService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// registerAuthRoutes registers the public authentication routes.
func registerAuthRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	handler := newAuthHandler(services.Identity)
	auth := r.Group("/auth")
	{
		auth.POST("/login", handler.login)
	}
}
