package bootstrap

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-badge/badge/internal/cache"
	"github.com/go-badge/badge/internal/config"
	"github.com/go-badge/badge/internal/metrics"
	"github.com/go-badge/badge/internal/middleware"
	"github.com/go-badge/badge/internal/scheme"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	outcomes cache.Cache[scheme.Outcome],
	active scheme.Scheme,
	recorder metrics.Recorder,
) *gin.Engine {
	r := gin.New()

	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.IPMiddleware())

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(outcomes))

	// Metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Rate limiting on guarded routes
	limit := setupRateLimiting(cfg)

	// Guarded routes: anything behind the active strategy
	guarded := r.Group("")
	if limit != nil {
		guarded.Use(limit)
	}
	guarded.Use(middleware.Authenticate(active))
	{
		guarded.GET("/user", whoamiHandler)
	}

	logServerStartup(cfg, active)
	return r
}

// whoamiHandler reports the authenticated identity back to the caller.
func whoamiHandler(c *gin.Context) {
	outcome, ok := middleware.OutcomeFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no authentication outcome"})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupRateLimiting builds the rate limit middleware, or nil when disabled.
func setupRateLimiting(cfg *config.Config) gin.HandlerFunc {
	if !cfg.RateLimitEnabled {
		return nil
	}

	var (
		limit gin.HandlerFunc
		err   error
	)
	if cfg.RateLimitStore == config.CacheBackendRedis {
		limit, err = middleware.NewRedisRateLimiter(
			cfg.RateLimitRequestsPerMinute,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
		)
	} else {
		limit, err = middleware.NewMemoryRateLimiter(cfg.RateLimitRequestsPerMinute)
	}
	if err != nil {
		log.Fatalf("Failed to initialize rate limiter: %v", err)
	}

	log.Printf("Rate limiting: %d requests/minute (store=%s)",
		cfg.RateLimitRequestsPerMinute, cfg.RateLimitStore)
	return limit
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(outcomes cache.Cache[scheme.Outcome]) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := outcomes.Health(c.Request.Context()); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status": "healthy",
				"cache":  "connected",
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"cache":  "disconnected",
			})
		}
	}
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config, active scheme.Scheme) {
	log.Printf("Authentication strategy: %s", active.Name())
	log.Printf("Badge server starting on %s", cfg.ServerAddr)
	log.Printf("Guarded endpoint: %s/user", cfg.BaseURL)
}
