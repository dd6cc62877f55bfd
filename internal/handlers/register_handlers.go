package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/middleware"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
func RegisterRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	r.GET("/", getHome)
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Authn sits upstream; the gateway injects the verified actor id.
	v1 := r.Group("/api/v1", middleware.RequireActor())

	registerReceivableRoutes(v1, services.Posting, services.Receivable)
	registerContributionRoutes(v1, services.Posting)
	registerSavingRoutes(v1, services.Saving)
	registerInterestRoutes(v1, services.Interest)
}
