// Package api wires together the HTTP surface of the Songbird backend.
//
// The device-facing surface is deliberately tiny: a single POST /api endpoint
// carrying the sync protocol, plus liveness/readiness probes and a version
// endpoint. Everything devices do travels through the one POST route, so the
// rate limiter and all middleware are shared by every command.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/songbird-live/songbird-backend/internal/api/sync"
	"github.com/songbird-live/songbird-backend/internal/config"
	"github.com/songbird-live/songbird-backend/internal/db/repositories"
	"github.com/songbird-live/songbird-backend/internal/middleware"
)

// Version is the server version reported by /version. Overridden at build time
// via -ldflags "-X github.com/songbird-live/songbird-backend/internal/api.Version=...".
var Version = "0.1.0"

// NewRouter creates and configures the Gin router. The returned *redis.Client
// is non-nil only when Redis is enabled and must be closed by the caller on
// shutdown.
func NewRouter(cfg *config.Config, db *sqlx.DB) (*gin.Engine, *redis.Client) {
	router := gin.New()

	apiKeyRepo := repositories.NewAPIKeyRepository(db)
	venueRepo := repositories.NewVenueRepository(db)
	requestRepo := repositories.NewRequestRepository(db)
	serialRepo := repositories.NewSerialRepository(db)
	songRepo := repositories.NewSongRepository(db)
	systemRepo := repositories.NewSystemRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)

	authenticator := sync.NewAuthenticator(apiKeyRepo, subscriptionRepo, venueRepo, systemRepo, cfg.Auth.SupportURL)
	syncHandler := sync.NewHandler(
		authenticator,
		requestRepo,
		venueRepo,
		songRepo,
		serialRepo,
		systemRepo,
		cfg.Auth.SupportURL,
		cfg.Sync.DefaultSystemID,
	)

	// Counter store selection: Redis when configured, otherwise in-process.
	var (
		counterStore middleware.CounterStore
		redisClient  *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		counterStore = middleware.NewRedisCounterStore(redisClient)
		slog.Info("rate limiting with shared redis counters", "addr", cfg.Redis.Addr)
	} else {
		counterStore = middleware.NewMemoryCounterStore()
		slog.Info("rate limiting with in-process counters")
	}

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/ready", readinessHandler(db, redisClient))
	router.GET("/version", versionHandler())

	// The sync protocol endpoint. Rate limiting sits only here so probe
	// traffic is never throttled.
	router.POST("/api",
		middleware.RateLimitMiddleware(counterStore, int64(cfg.Sync.RateLimitPerMinute)),
		syncHandler.Handle,
	)

	return router, redisClient
}

// healthCheckHandler is the liveness probe: process up, database reachable.
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// readinessHandler is the readiness probe. Unlike /health it also checks the
// Redis counter store when one is configured, so a readiness gate fails while
// the shared rate limiter is unreachable. A nil client means the in-process
// store is in use and there is nothing extra to check.
func readinessHandler(db *sqlx.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		if err := db.Ping(); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		if redisClient != nil {
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				checks["redis"] = "unhealthy"
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"ready":  false,
					"checks": checks,
					"error":  "redis not ready",
				})
				return
			}
			checks["redis"] = "healthy"
		}

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the server version and sync protocol version.
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":       Version,
			"sync_protocol": "1",
		})
	}
}

// LoggerMiddleware provides structured request logging.
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if cfg.Logging.Format == "json" {
			logJSON(c, latency, path, query)
		} else {
			logText(c, latency, path, query)
		}
	}
}

// logJSON logs a request as a JSON-structured slog record.
func logJSON(c *gin.Context, latency time.Duration, path, query string) {
	requestID, _ := c.Get(middleware.RequestIDKey)
	slog.LogAttrs(
		c.Request.Context(),
		slog.LevelInfo,
		"http request",
		slog.String("method", c.Request.Method),
		slog.String("path", path),
		slog.String("query", query),
		slog.Int("status", c.Writer.Status()),
		slog.Int("size", c.Writer.Size()),
		slog.Duration("latency", latency),
		slog.String("ip", c.ClientIP()),
		slog.String("request_id", fmt.Sprintf("%v", requestID)),
		slog.String("user_agent", c.Request.UserAgent()),
	)
}

// logText logs a request as a human-readable slog text record.
func logText(c *gin.Context, latency time.Duration, path, query string) {
	// reuse the same structured output; slog will emit text format when the global
	// handler is a TextHandler (configured in telemetry.SetupLogger).
	logJSON(c, latency, path, query)
}
