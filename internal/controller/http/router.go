package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires the HTTP surface: health, optional metrics, and the
// authenticated API.
func NewRouter(h *Handlers, jwtSecret []byte, metricsEnabled bool, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if metricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api", Auth(jwtSecret))
	{
		api.POST("/lessons", RequireStaff(), h.CreateLesson)
		api.GET("/lessons", h.ListLessons)
		api.GET("/lessons/:id", h.GetLesson)
		api.POST("/lessons/:id/participants/:memberID/toggle", h.ToggleAttendance)
		api.POST("/lessons/:id/complete", RequireStaff(), h.CompleteLesson)
		api.POST("/lessons/:id/cancel", RequireStaff(), h.CancelLesson)

		api.POST("/packages", RequireStaff(), h.GrantPackage)
		api.GET("/members/:id/packages", h.ListMemberPackages)
	}

	return router
}
