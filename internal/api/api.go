// Package api holds the gin handlers of the HTTP service.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/recetario/backend/internal/catalog"
	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/storage"
)

// Deps are the services the handlers run against.
type Deps struct {
	Auth     service.IAuthService
	Recipes  service.IRecipeService
	Catalog  *catalog.Catalog
	Likes    *catalog.LikeCoordinator
	Sessions session.Registry
	// Limiter throttles recipe creation and like toggles. Nil disables it.
	Limiter       middleware.Limiter
	Checks        map[string]Check
	MaxImageBytes int64
	// LocalImages serves images kept in process under /images. Nil when
	// images live in a bucket.
	LocalImages *storage.Memory
}

// RegisterRoutes mounts the health check and the /api/v1 routes.
func RegisterRoutes(router *gin.Engine, deps Deps) {
	if deps.MaxImageBytes <= 0 {
		deps.MaxImageBytes = storage.DefaultMaxBytes
	}

	router.GET("/healthz", NewHealthHandler(deps.Checks).Check)
	if deps.LocalImages != nil {
		router.GET("/images/:name", NewImageHandler(deps.LocalImages).Serve)
	}

	v1 := router.Group("/api/v1")
	NewAuthHandler(deps.Auth).RegisterRoutes(v1)

	limit := func(c *gin.Context) { c.Next() }
	if deps.Limiter != nil {
		limit = middleware.RateLimit(deps.Limiter)
	}
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Auth, deps.Sessions))
	NewRecipeHandler(deps.Recipes, deps.Catalog, deps.Likes, deps.MaxImageBytes).RegisterRoutes(protected, limit)
}
