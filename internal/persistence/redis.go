package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/annotation-auth/internal/config"
)

// ErrRedisNotConfigured is returned by Ping when REDIS_ADDR is empty.
var ErrRedisNotConfigured = errors.New("redis client not configured")

// Redis wraps the go-redis client. A nil Client means Redis is disabled.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client for cfg. An unreachable server is logged, not fatal:
// callers fall back to defaults when Redis is down.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *Redis {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR not provided; feature flags use configured defaults")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// Cmdable returns the client as redis.Cmdable, or nil when disabled.
func (r *Redis) Cmdable() redis.Cmdable {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrRedisNotConfigured
	}
	return r.Client.Ping(ctx).Err()
}
