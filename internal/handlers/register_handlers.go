package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/cashbookhq/cashbook-bot/internal/core/ports/repositories"
	portssvc "github.com/cashbookhq/cashbook-bot/internal/core/ports/services"
)

// RegisterRoutes sets up the operator HTTP surface. It is an internal-only
// listener: no authentication layer, reachability is the operator's problem.
func RegisterRoutes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	repos *repositories.RepositoryProvider,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.String(200, "OK")
	})

	registerOpsRoutes(r, services, repos)
}
