package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/api"
	"github.com/pageza/recetario/backend/internal/metrics"
	"github.com/pageza/recetario/backend/internal/middleware"
)

// Options configure the middleware chain shared by every route.
type Options struct {
	AllowedOrigins []string
	Metrics        *metrics.Collector
}

// SetupRouter configures the application routes
func SetupRouter(opts Options, deps api.Deps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(opts.Metrics),
		middleware.CORS(opts.AllowedOrigins),
		middleware.ErrorHandler(),
	)

	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	api.RegisterRoutes(router, deps)
	return router
}
