package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/reqtrail/reqtrail/internal/config"
	"golang.org/x/time/rate"
)

// ipLimiters hands out one token bucket per client address.
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// RateLimitMiddleware throttles the admin API per client IP.
func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	rps := rate.Limit(10)
	burst := 20
	if cfg != nil && cfg.Rate.RequestsPerSecond > 0 {
		rps = rate.Limit(cfg.Rate.RequestsPerSecond)
	}
	if cfg != nil && cfg.Rate.Burst > 0 {
		burst = cfg.Rate.Burst
	}
	limiters := &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
