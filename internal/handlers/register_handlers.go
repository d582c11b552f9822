package handlers

import (
	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/middleware"
	"github.com/bbabel1/property-manager-sub016/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))
	RegisterOrgRoutes(v1.Group("/orgs/:orgID"), services)
}

// RegisterOrgRoutes registers every organization-scoped route on rg, which must bind :orgID.
func RegisterOrgRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	registerAllocationRoutes(rg, services.Allocation)
	registerBillRoutes(rg, services.Bill)
	registerFinanceRoutes(rg, services.Finance)
	registerReconciliationRoutes(rg, services.Reconciliation)
}
