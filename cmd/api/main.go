package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bhamfamilies/directory/internal/adapters/cache"
	"github.com/bhamfamilies/directory/internal/adapters/database"
	"github.com/bhamfamilies/directory/internal/adapters/session"
	"github.com/bhamfamilies/directory/internal/api/handlers"
	"github.com/bhamfamilies/directory/internal/api/middleware"
	"github.com/bhamfamilies/directory/internal/api/routes"
	"github.com/bhamfamilies/directory/internal/domain/providers"
	"github.com/bhamfamilies/directory/internal/infrastructure/clients/postgres"
	"github.com/bhamfamilies/directory/internal/infrastructure/clients/redis"
	"github.com/bhamfamilies/directory/internal/infrastructure/observability"
	"github.com/bhamfamilies/directory/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		observability.GetLogger().Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					logger.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database, *logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	// Redis is optional: without it there is no response cache and no
	// sessions, so favorites degrade to 401s while catalogs keep working.
	var cacheProvider providers.CacheProvider
	var sessionStore providers.SessionStore
	redisClient, err := redis.NewClient(&cfg.Redis, *logger)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache and sessions")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		sessionStore = session.NewRedisStore(redisClient)
	}

	favoriteRepo := database.NewFavoriteAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)

	favoriteHandler := handlers.NewFavoriteHandler(favoriteRepo, metrics)
	authHandler := handlers.NewAuthHandler(sessionStore, &cfg.Auth)
	catalogHandler := handlers.NewCatalogHandler(cfg.Catalog.DataDir)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
	}

	router := routes.NewRouter(
		favoriteHandler,
		authHandler,
		catalogHandler,
		cacheMiddleware,
		sessionStore,
		userRepo,
		cfg.Auth.CookieName,
		metrics,
	)
	handler := router.SetupRoutes()

	server := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("error during server shutdown")
	}

	logger.Info().Msg("server stopped")
}
