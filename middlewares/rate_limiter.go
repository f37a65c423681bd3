package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL      = 10 * time.Minute
	limiterCleanupEvery = time.Minute
)

// RateLimiter keeps one token bucket per client IP. Buckets of clients that
// stay quiet for the idle TTL are dropped.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	limiters *cache.Cache
	mu       sync.Mutex
}

func NewRateLimiter(perSecond int, burst int) *RateLimiter {
	return newRateLimiter(rate.Limit(perSecond), burst, limiterIdleTTL, limiterCleanupEvery)
}

func newRateLimiter(limit rate.Limit, burst int, ttl, cleanup time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		burst:    burst,
		ttl:      ttl,
		limiters: cache.New(ttl, cleanup),
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var limiter *rate.Limiter
	if v, found := rl.limiters.Get(ip); found {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
	}
	// every hit pushes the expiry out again
	rl.limiters.Set(ip, limiter, rl.ttl)
	return limiter
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  false,
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}

// NewStrictRateLimiter guards login/register: 5 attempts per minute per IP.
func NewStrictRateLimiter() gin.HandlerFunc {
	return newRateLimiter(rate.Every(time.Minute/5), 5, limiterIdleTTL, limiterCleanupEvery).RateLimit()
}
