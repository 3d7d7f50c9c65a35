package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"daybill/internal/handler"
	"daybill/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	extractH *handler.ExtractHandler,
	healthH *handler.HealthHandler,
	log zerolog.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	handler.SetLogger(log)

	// Health check
	r.GET("/healthz", healthH.Liveness)

	v1 := r.Group("/api/v1")

	extracts := v1.Group("/extracts")
	extracts.POST("", extractH.Upload)
	extracts.GET("/:id", extractH.Get)
	extracts.GET("/:id/records", extractH.Records)
	extracts.GET("/:id/summary", extractH.Summary)
	extracts.GET("/:id/report", extractH.Report)
	extracts.DELETE("/:id", extractH.Delete)

	return r
}
