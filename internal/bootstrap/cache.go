package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-badge/badge/internal/cache"
	"github.com/go-badge/badge/internal/config"
	"github.com/go-badge/badge/internal/metrics"
	"github.com/go-badge/badge/internal/scheme"
)

const cacheInitTimeout = 10 * time.Second

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) metrics.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return recorder
}

// initializeOutcomeCache initializes the outcome cache based on configuration
func initializeOutcomeCache(
	ctx context.Context,
	cfg *config.Config,
) (cache.Cache[scheme.Outcome], error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		ctx, cancel := context.WithTimeout(ctx, cacheInitTimeout)
		defer cancel()

		outcomes, err := cache.NewRueidisCache[scheme.Outcome](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			"badge:outcomes:",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis outcome cache: %w", err)
		}
		log.Printf("Outcome cache: redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
		return outcomes, nil

	default: // memory
		outcomes, err := cache.NewMemoryCache[scheme.Outcome](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize memory outcome cache: %w", err)
		}
		log.Printf("Outcome cache: memory (size=%d, single instance only)", cfg.CacheSize)
		return outcomes, nil
	}
}
