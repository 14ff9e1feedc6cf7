package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/deppfellow/coursehub/internal/errs"
	"github.com/deppfellow/coursehub/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Counter increments the hit count of key inside a window that expires
// after window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisCounter struct {
	client *redis.Client
}

func (r redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimitMiddleware caps mutations per caller with a fixed window
// counter in Redis. When Redis is unavailable requests are let through.
type RateLimitMiddleware struct {
	server  *server.Server
	counter Counter
	now     func() time.Time
}

// NewRateLimitMiddleware counts hits in the server's Redis client. It is
// disabled when rate limiting is off or Redis is not configured.
func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	r := &RateLimitMiddleware{server: s, now: time.Now}
	if s.Redis != nil {
		r.counter = redisCounter{client: s.Redis}
	}
	return r
}

// WithCounter replaces the Redis counter.
func (r *RateLimitMiddleware) WithCounter(counter Counter) *RateLimitMiddleware {
	r.counter = counter
	return r
}

// Limit must run after RequireAuth so callers are counted by user id.
func (r *RateLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	cfg := r.server.Config.RateLimit
	if !cfg.Enabled || r.counter == nil {
		return next
	}

	return func(c echo.Context) error {
		identity := GetUserID(c)
		if identity == "" {
			identity = "ip:" + c.RealIP()
		}

		window := r.now().Truncate(cfg.Window).Unix()
		key := fmt.Sprintf("coursehub:ratelimit:%s:%d", identity, window)

		hits, err := r.counter.Incr(c.Request().Context(), key, cfg.Window)
		if err != nil {
			GetLogger(c).Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			return next(c)
		}

		remaining := int64(cfg.Requests) - hits
		if remaining < 0 {
			remaining = 0
		}
		header := c.Response().Header()
		header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		header.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if hits > int64(cfg.Requests) {
			r.RecordRateLimitHit(c.Path())
			GetLogger(c).Warn().Int64("hits", hits).Msg("rate limit exceeded")
			return errs.NewTooManyRequestsError("Too many requests, please try again later")
		}

		return next(c)
	}
}

// RecordRateLimitHit sends a RateLimitHit custom event to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
