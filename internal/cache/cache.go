package cache

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/utils"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

type CacheService interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Remember returns the cached value under key, computing and storing it on a miss.
// Cache failures are logged and degrade to a direct call of load.
func Remember[T any](ctx context.Context, c CacheService, logger utils.Logger, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	err := c.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
	return value, nil
}
