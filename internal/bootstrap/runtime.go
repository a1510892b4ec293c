// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"warbler/internal/cache"
	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/middleware"
	"warbler/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipRedis leaves the Redis client nil, for tools that only need the database.
	SkipRedis bool
	// SkipTracing keeps the no-op tracer even when tracing is enabled.
	SkipTracing bool
}

// Runtime holds the initialized dependencies and their shutdown hook.
type Runtime struct {
	DB            *gorm.DB
	Redis         *redis.Client
	shutdownTrace func(context.Context) error
}

// InitRuntime installs tracing, connects to the database (applying the schema
// policy) and connects to Redis. Redis is optional: when it is unreachable
// Runtime.Redis is nil.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{shutdownTrace: func(context.Context) error { return nil }}

	if !opts.SkipTracing {
		shutdown, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:  observability.ServiceName,
			Environment:  cfg.Env,
			Enabled:      cfg.TracingEnabled,
			Exporter:     cfg.TracingExporter,
			OTLPEndpoint: cfg.OTLPEndpoint,
			SamplerRatio: cfg.TracingSamplerRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("tracing init failed: %w", err)
		}
		rt.shutdownTrace = shutdown
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt.DB = db

	if !opts.SkipRedis {
		cache.InitRedis(cfg.RedisURL)
		rt.Redis = cache.GetClient()
		if rt.Redis == nil {
			middleware.Logger.Warn("redis unavailable; sessions are kept in memory and tokens cannot be revoked",
				slog.String("addr", cfg.RedisURL))
		}
	}

	return rt, nil
}

// Close releases the connections and flushes pending spans.
func (rt *Runtime) Close(ctx context.Context) error {
	var firstErr error
	if rt.DB != nil {
		if sqlDB, err := rt.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := rt.shutdownTrace(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
