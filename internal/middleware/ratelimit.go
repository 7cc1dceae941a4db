package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stylescanner/server/internal/pkg/response"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const rateLimitPrefix = "stylescanner:rate_limit"

// NewRateLimiter builds a fixed-window limiter allowing max requests per window.
// Counters live in Redis when rdb is non-nil so every instance shares them.
func NewRateLimiter(rdb *redis.Client, window time.Duration, max int64) (*limiter.Limiter, error) {
	rate := limiter.Rate{Period: window, Limit: max}
	if rdb == nil {
		return limiter.New(memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: time.Minute,
		}), rate), nil
	}
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   rateLimitPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit store: %w", err)
	}
	return limiter.New(store, rate), nil
}

// RateLimit enforces l per client IP. Store failures let the request through.
func RateLimit(l *limiter.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx, err := l.Get(c.Request.Context(), ip)
		if err != nil {
			log.Warn("rate limit store unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			retry := time.Until(time.Unix(ctx.Reset, 0))
			if retry < time.Second {
				retry = time.Second
			}
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())))
			response.TooManyRequests(c, "Too many requests from this IP, please try again later.")
			return
		}

		c.Next()
	}
}
