package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	portssvc "github.com/meridianfx/ledger-core/internal/core/ports/services"
	"github.com/meridianfx/ledger-core/internal/middleware"
	"github.com/meridianfx/ledger-core/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	limiterInstance *limiter.Limiter,
) {
	// Health check stays outside auth and rate limiting.
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	registerAuthRoutes(r, services)

	setupAPIV1Routes(r, services, limiterInstance)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the
// per-entity route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	limiterInstance *limiter.Limiter,
) {
	v1 := r.Group("/api/v1",
		middleware.AuthMiddleware(services.Identity),
		middleware.RateLimit(limiterInstance),
	)

	registerTenantRoutes(v1, services.Tenant, services.Identity)
	registerAccountRoutes(v1, services.Account)
	registerCurrencyRoutes(v1, services.Currency)
	registerRateRoutes(v1, services.Rate)
	registerTransactionRoutes(v1, services.Posting)
	registerLedgerRoutes(v1, services.Ledger)
	registerRecipeRoutes(v1, services.Recipe)
	registerReportingRoutes(v1, services.Reporting)
}
