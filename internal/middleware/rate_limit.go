package middleware

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitPrefix = "ratelimit:"
	// memorySweepInterval bounds how often MemoryLimiter drops expired windows.
	memorySweepInterval = time.Minute
)

// Limiter counts hits on key inside a fixed window.
type Limiter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("failed to set rate window: %w", err)
		}
		return count, window, nil
	}

	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read rate window: %w", err)
	}
	if ttl < 0 {
		// counter lost its expiry; restart the window
		l.client.Expire(ctx, key, window)
		ttl = window
	}
	return count, ttl, nil
}

type memoryWindow struct {
	count int64
	reset time.Time
}

// MemoryLimiter is the single-instance fallback used without Redis.
// Expired windows are swept on Hit at most once per memorySweepInterval.
type MemoryLimiter struct {
	mu        sync.Mutex
	windows   map[string]*memoryWindow
	now       func() time.Time
	nextSweep time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*memoryWindow), now: time.Now}
}

// Len reports how many windows are tracked.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(memorySweepInterval)
}

func (l *MemoryLimiter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	w, ok := l.windows[key]
	if !ok || !now.Before(w.reset) {
		w = &memoryWindow{reset: now.Add(window)}
		l.windows[key] = w
	}
	w.count++
	return w.count, w.reset.Sub(now), nil
}

// RateLimitKey signs the caller: user id and IP when authenticated, IP and user agent otherwise.
func RateLimitKey(c *gin.Context) string {
	var signature string
	if userID := CurrentUserID(c); userID != 0 {
		signature = fmt.Sprintf("%d|%s", userID, c.ClientIP())
	} else {
		signature = c.ClientIP() + "|" + c.Request.UserAgent()
	}
	sum := sha1.Sum([]byte(signature))
	return rateLimitPrefix + hex.EncodeToString(sum[:])
}

// RateLimit answers 429 once a caller exceeds max requests per window.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, max int, window time.Duration, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := RateLimitKey(c)
		count, resetIn, err := limiter.Hit(c.Request.Context(), key, window)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "Rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		remaining := int64(max) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(max) {
			retryAfter := int(math.Ceil(resetIn.Seconds()))
			logger.Warn("Rate limit exceeded",
				"ip", c.ClientIP(),
				"user_agent", c.Request.UserAgent(),
				"endpoint", c.Request.URL.Path,
				"key", key,
			)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     fmt.Sprintf("Demasiadas solicitudes. Intente nuevamente en %d segundos.", retryAfter),
				"retry_after": retryAfter,
			})
			return
		}
		c.Next()
	}
}
