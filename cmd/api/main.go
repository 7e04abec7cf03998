package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/api"
	"github.com/pageza/recetario/backend/internal/catalog"
	"github.com/pageza/recetario/backend/internal/database"
	"github.com/pageza/recetario/backend/internal/logging"
	"github.com/pageza/recetario/backend/internal/metrics"
	"github.com/pageza/recetario/backend/internal/middleware"
	"github.com/pageza/recetario/backend/internal/router"
	"github.com/pageza/recetario/backend/internal/server"
	"github.com/pageza/recetario/backend/internal/service"
	"github.com/pageza/recetario/backend/internal/session"
	"github.com/pageza/recetario/backend/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, config.IsProduction())
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the document store
	st, err := database.OpenStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open store")
	}
	defer st.Close()

	collector := metrics.New("recetario")
	checks := map[string]api.Check{"store": st.Ping}

	// Sessions and rate limits live in Redis when it is reachable
	limits := middleware.RateLimitConfig{
		Window:    cfg.RateLimitWindow,
		Limit:     cfg.RateLimitRequests,
		KeyPrefix: "rate_limit:writes",
	}
	var registry session.Registry = session.NewMemoryRegistry()
	var limiter middleware.Limiter = middleware.NewMemoryLimiter(limits)
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Redis unavailable, keeping sessions and rate limits in memory")
	} else {
		defer redisClient.Close()
		registry = session.NewRedisRegistry(redisClient, cfg.TokenTTL)
		limiter = middleware.NewRateLimiter(redisClient, limits)
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	images := imageStore(ctx, cfg)
	localImages, _ := images.(*storage.Memory)

	mode, err := catalog.ParseLikeMode(cfg.LikeMode)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid like mode")
	}
	cat := catalog.New(st, catalog.WithTimeout(cfg.QueryTimeout), catalog.WithMetrics(collector))
	likes := catalog.NewLikeCoordinator(st, mode, catalog.WithTimeout(cfg.QueryTimeout), catalog.WithMetrics(collector))

	// Initialize services
	authService := service.NewAuthService(st, cfg.JWTSecret,
		service.WithTokenTTL(cfg.TokenTTL, cfg.ResetTokenTTL),
		service.WithMailer(service.NewEmailService(cfg)))
	recipeService := service.NewRecipeService(st, images, cat, cfg.MaxImageBytes)

	r := router.SetupRouter(router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        collector,
	}, api.Deps{
		Auth:          authService,
		Recipes:       recipeService,
		Catalog:       cat,
		Likes:         likes,
		Sessions:      registry,
		Limiter:       limiter,
		Checks:        checks,
		MaxImageBytes: cfg.MaxImageBytes,
		LocalImages:   localImages,
	})

	logrus.WithFields(logrus.Fields{
		"store":     cfg.StoreDriver,
		"like_mode": mode,
	}).Info("Starting Recetario API")
	if err := server.New(net.JoinHostPort(cfg.ServerHost, cfg.ServerPort), r).Run(ctx); err != nil {
		logrus.WithError(err).Fatal("Server failed")
	}
}

// imageStore uses S3 when a bucket is configured. Otherwise images are kept
// in memory and served by the API itself under /images.
func imageStore(ctx context.Context, cfg *config.Config) storage.ImageStore {
	if cfg.S3BucketName == "" {
		logrus.Warn("S3_BUCKET_NAME not set, keeping images in memory")
		return storage.NewMemory("http://" + net.JoinHostPort(cfg.ServerHost, cfg.ServerPort))
	}
	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure S3")
	}
	return storage.NewS3Store(s3cfg)
}
