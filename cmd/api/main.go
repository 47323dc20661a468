// Package main is the entry point for the Agora API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/openagora/agora/internal/api"
	"github.com/openagora/agora/internal/config"
	"github.com/openagora/agora/internal/content"
	"github.com/openagora/agora/internal/db"
	"github.com/openagora/agora/internal/feed"
	"github.com/openagora/agora/internal/health"
	"github.com/openagora/agora/internal/message"
	"github.com/openagora/agora/internal/middleware"
	"github.com/openagora/agora/internal/notification"
	"github.com/openagora/agora/internal/place"
	"github.com/openagora/agora/internal/shop"
	"github.com/openagora/agora/internal/tracing"
	"github.com/openagora/agora/internal/user"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configFile := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("Agora API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			slog.Error("configuration error", "error", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	// Tracing
	tracingProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "agora-api",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingOTLPEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Repositories: Postgres-backed content store when a database is
	// configured, in-memory everywhere else.
	var contents content.ContentRepository = content.NewInMemoryContentRepository()
	var dbChecker api.HealthChecker
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer sqlDB.Close()
		contents = content.NewPostgresContentRepository(sqlDB)
		dbChecker = health.NewDBChecker(sqlDB)
		logger.Info("using postgres content repository")
	} else {
		logger.Info("using in-memory content repository")
	}

	users := user.NewInMemoryUserRepository()
	places := place.NewInMemoryPlaceRepository()
	shops := shop.NewInMemoryShopRepository()
	notifications := notification.NewInMemoryNotificationRepository()
	messages := message.NewInMemoryMessageRepository()

	// Rate limit store: Redis-backed when configured so limits hold across
	// instances, in-memory otherwise.
	var limitStore middleware.RateLimitStore = middleware.NewInMemoryRateLimitStore()
	var redisChecker api.HealthChecker
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid redis URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		limitStore = middleware.NewRedisRateLimitStore(redisClient)
		redisChecker = health.NewRedisChecker(redisClient)
		logger.Info("using redis rate limit store")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}
	if rs, ok := limitStore.(*middleware.RedisRateLimitStore); ok {
		rs.WithMetrics(httpMetrics)
	}
	feedMetrics := feed.NewMetrics()
	if err := feedMetrics.Register(registry); err != nil {
		logger.Error("failed to register feed metrics", "error", err)
		os.Exit(1)
	}

	// Feed resolver with calibration
	cal, err := feed.LoadCalibration(cfg.FeedCalibrationPath)
	if err != nil {
		logger.Warn("using default feed calibration", "error", err)
	}
	organizers := feed.NewGraphOrganizerResolver(users, places, shops)
	resolver := feed.NewResolver(contents, organizers, cal, feedMetrics)

	// Handlers
	searchLimit := middleware.RateLimitConfig{
		RequestsPerWindow: cfg.SearchRateLimitPerMinute,
		WindowDuration:    time.Minute,
	}
	mux := api.NewRouter(api.RouterConfig{
		Feed:          api.NewFeedHandlers(resolver),
		Content:       api.NewContentHandlers(contents),
		Users:         api.NewUserHandlers(users, places, shops, notifications),
		Search:        api.NewSearchHandlers(resolver),
		Notifications: api.NewNotificationHandlers(notifications),
		Messages:      api.NewMessageHandlers(messages, notifications),
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			DBChecker:      dbChecker,
			RedisChecker:   redisChecker,
			MetricsEnabled: true,
		}),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		SearchLimiter:  middleware.RateLimiter(limitStore, searchLimit, middleware.ViewerKeyFunc(), httpMetrics),
	})

	// Middleware chain, outermost first:
	// RequestID -> Tracing -> Viewer -> Logging -> HTTPMetrics -> CORS -> RateLimiter
	globalLimit := middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimitPerMinute,
		WindowDuration:    time.Minute,
	}
	var handler http.Handler = mux
	handler = middleware.RateLimiter(limitStore, globalLimit, middleware.ViewerKeyFunc(), httpMetrics)(handler)
	if len(cfg.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		})(handler)
	}
	handler = middleware.HTTPMetrics(httpMetrics)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Viewer(handler)
	if cfg.TracingEnabled {
		handler = middleware.Tracing("agora-api")(handler)
	}
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracingProvider.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown tracing", "error", err)
	}

	logger.Info("server stopped")
}
