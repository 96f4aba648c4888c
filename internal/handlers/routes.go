package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint on router. metrics may be nil when
// the Prometheus endpoint is not wanted.
func SetupRoutes(router *gin.Engine, svc ConfigurationService, metrics http.Handler) {
	router.GET("/health", HealthHandler)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")
	{
		configurations := v1.Group("/configurations")
		{
			configurations.GET("", HandleRootConfigurations(svc))
			configurations.POST("/resolve", HandleResolve(svc))
			configurations.GET("/:id/family", HandleFamily(svc))
			configurations.GET("/:id/icon", HandleIcon(svc))
		}
	}
}
