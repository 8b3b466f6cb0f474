package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig tunes the per-client rate limiter. Zero values fall
// back to the defaults below.
type RateLimitConfig struct {
	// RPS is the sustained request rate allowed per client IP.
	RPS int
	// Burst is the token bucket depth per client IP.
	Burst int
	// SweepInterval is how often idle client buckets are scanned.
	SweepInterval time.Duration
	// IdleEviction is how long a client may stay idle before its bucket
	// is dropped.
	IdleEviction time.Duration
}

const (
	defaultLimiterRPS           = 5
	defaultLimiterBurst         = 10
	defaultLimiterSweepInterval = 5 * time.Minute
	defaultLimiterIdleEviction  = 10 * time.Minute
)

func (cfg RateLimitConfig) withDefaults() RateLimitConfig {
	if cfg.RPS <= 0 {
		cfg.RPS = defaultLimiterRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultLimiterBurst
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultLimiterSweepInterval
	}
	if cfg.IdleEviction <= 0 {
		cfg.IdleEviction = defaultLimiterIdleEviction
	}
	return cfg
}

// clientLimiter pairs a token bucket with its last-use time so idle
// clients can be evicted.
type clientLimiter struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter returns a Gin middleware enforcing per-client token-bucket
// rate limiting. Assessment runs are CPU-heavy, so the default limits in
// the service config are deliberately low.
func RateLimiter(cfg RateLimitConfig) gin.HandlerFunc {
	cfg = cfg.withDefaults()

	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	go func() {
		for range time.Tick(cfg.SweepInterval) {
			mu.Lock()
			for ip, cl := range clients {
				if time.Since(cl.lastSeen) > cfg.IdleEviction {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		cl, ok := clients[ip]
		if !ok {
			cl = &clientLimiter{bucket: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)}
			clients[ip] = cl
		}
		cl.lastSeen = time.Now()
		mu.Unlock()

		if !cl.bucket.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
