// Package features evaluates feature flags stored in a Redis hash, falling
// back to configured defaults when a flag is unset or Redis is unavailable.
package features

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DirectLinking gates in-context links to annotations.
const DirectLinking = "direct_linking"

// HashKey is the Redis hash holding flag values by name.
const HashKey = "features"

// Flags reports whether a named feature is enabled.
type Flags interface {
	Enabled(ctx context.Context, name string) bool
}

// Store is a Redis-backed Flags implementation.
type Store struct {
	client   redis.Cmdable
	defaults map[string]bool
	logger   *zap.Logger
}

// NewStore constructs a flag store. client may be nil, in which case only
// defaults are consulted.
func NewStore(client redis.Cmdable, defaults map[string]bool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	copied := make(map[string]bool, len(defaults))
	for k, v := range defaults {
		copied[k] = v
	}
	return &Store{client: client, defaults: copied, logger: logger}
}

// Enabled implements Flags.
func (s *Store) Enabled(ctx context.Context, name string) bool {
	fallback := s.defaults[name]
	if s.client == nil {
		return fallback
	}

	val, err := s.client.HGet(ctx, HashKey, name).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("feature flag lookup failed", zap.String("feature", name), zap.Error(err))
		}
		return fallback
	}

	enabled, err := strconv.ParseBool(val)
	if err != nil {
		s.logger.Warn("invalid feature flag value", zap.String("feature", name), zap.String("value", val))
		return fallback
	}
	return enabled
}

// Set stores a flag value in Redis.
func (s *Store) Set(ctx context.Context, name string, enabled bool) error {
	if s.client == nil {
		return errors.New("feature flags are read-only without redis")
	}
	return s.client.HSet(ctx, HashKey, name, strconv.FormatBool(enabled)).Err()
}

// Static is a fixed Flags implementation.
type Static map[string]bool

// Enabled implements Flags.
func (s Static) Enabled(_ context.Context, name string) bool {
	return s[name]
}
