package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pageza/recetario/backend/internal/apperr"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// Limiter decides whether one more request under key is allowed.
// It returns the remaining allowance and when it resets.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, reset time.Time, err error)
	Config() RateLimitConfig
}

// RateLimiter is a fixed-window limiter backed by Redis.
type RateLimiter struct {
	redis  redis.Cmdable
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient redis.Cmdable, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

func (rl *RateLimiter) Config() RateLimitConfig { return rl.config }

func (rl *RateLimiter) windowKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, key, windowStart.Unix())
}

// Allow counts the request in the current window.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	redisKey := rl.windowKey(key, windowStart)

	pipe := rl.redis.TxPipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := max(rl.config.Limit-count, 0)
	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// Remaining reports the allowance left in the current window without
// counting a request.
func (rl *RateLimiter) Remaining(ctx context.Context, key string) (int, time.Time, error) {
	windowStart := time.Now().Truncate(rl.config.Window)
	reset := windowStart.Add(rl.config.Window)

	count, err := rl.redis.Get(ctx, rl.windowKey(key, windowStart)).Int()
	if err == redis.Nil {
		return rl.config.Limit, reset, nil
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return max(rl.config.Limit-count, 0), reset, nil
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket limiter used when Redis is
// not available. It refills Limit tokens per Window.
type MemoryLimiter struct {
	config RateLimitConfig

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

func NewMemoryLimiter(config RateLimitConfig) *MemoryLimiter {
	return &MemoryLimiter{config: config, entries: make(map[string]*limiterEntry)}
}

func (ml *MemoryLimiter) Config() RateLimitConfig { return ml.config }

func (ml *MemoryLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	now := time.Now()
	every := ml.config.Window / time.Duration(ml.config.Limit)

	ml.mu.Lock()
	defer ml.mu.Unlock()
	ml.cleanup(now)
	e, ok := ml.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(every), ml.config.Limit)}
		ml.entries[key] = e
	}
	e.lastSeen = now

	allowed := e.limiter.AllowN(now, 1)
	remaining := max(int(e.limiter.TokensAt(now)), 0)
	return allowed, remaining, now.Add(every), nil
}

// cleanup drops buckets idle for a full window, which are full again anyway.
func (ml *MemoryLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-ml.config.Window)
	for k, e := range ml.entries {
		if e.lastSeen.Before(cutoff) {
			delete(ml.entries, k)
		}
	}
}

// RateLimit limits requests per user, or per client IP for anonymous
// callers. A failing limiter lets the request through.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	cfg := limiter.Config()
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if sess := Session(c); sess.Authenticated() {
			key = "user:" + sess.UserID.String()
		}

		allowed, remaining, reset, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logrus.WithError(err).WithField("prefix", cfg.KeyPrefix).Warn("Rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(max(int(time.Until(reset).Seconds()), 1)))
			Abort(c, fmt.Errorf("%w: %d requests per %v", apperr.ErrRateLimited, cfg.Limit, cfg.Window))
			return
		}
		c.Next()
	}
}
