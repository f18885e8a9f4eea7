// utils/ratelimit.go
package utils

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig configures a single rate limit tier.
type RateLimitConfig struct {
	// Maximum requests allowed within the sliding window.
	MaxRequests int
	// Duration of the sliding window.
	Window time.Duration
}

type rateTier struct {
	config  RateLimitConfig
	clients map[string][]time.Time
}

// RateLimiter is an in-memory per-IP sliding-window limiter.
//
// Each named tier (e.g. "public", "booking") has its own config and
// tracking map. Keys are client IPs; values are request timestamps
// within the window. State is process-local.
type RateLimiter struct {
	mu    sync.Mutex
	tiers map[string]*rateTier
	now   func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		tiers: make(map[string]*rateTier),
		now:   time.Now,
	}
}

// AddTier registers a named tier with its configuration.
func (rl *RateLimiter) AddTier(name string, config RateLimitConfig) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tiers[name] = &rateTier{
		config:  config,
		clients: make(map[string][]time.Time),
	}
}

// Check reports whether a request from ip is allowed under the given
// tier. When rejected, retryAfter is the time until the oldest request
// leaves the window, never less than one second.
func (rl *RateLimiter) Check(tier, ip string) (retryAfter time.Duration, allowed bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	t, ok := rl.tiers[tier]
	if !ok {
		// Unknown tier is a wiring bug; fail open rather than block traffic.
		return 0, true
	}

	now := rl.now()
	windowStart := now.Add(-t.config.Window)

	timestamps := t.clients[ip]
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= t.config.MaxRequests {
		oldest := kept[0]
		retry := oldest.Add(t.config.Window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		t.clients[ip] = kept
		return retry, false
	}

	t.clients[ip] = append(kept, now)
	return 0, true
}

// Cleanup drops any (tier, IP) entry whose timestamps are all older than
// twice the tier window. Call periodically from a background task.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for _, t := range rl.tiers {
		cutoff := now.Add(-2 * t.config.Window)
		for ip, timestamps := range t.clients {
			kept := timestamps[:0]
			for _, ts := range timestamps {
				if ts.After(cutoff) {
					kept = append(kept, ts)
				}
			}
			if len(kept) == 0 {
				delete(t.clients, ip)
			} else {
				t.clients[ip] = kept
			}
		}
	}
}

// ClientIP extracts the client address from X-Forwarded-For (reverse
// proxy deployment) or falls back to the transport peer address.
func ClientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	return c.ClientIP()
}

// RateLimitMiddleware guards a route group with the named tier.
func RateLimitMiddleware(limiter *RateLimiter, tier string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ClientIP(c)
		retryAfter, allowed := limiter.Check(tier, ip)
		if !allowed {
			secs := int(retryAfter.Seconds())
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", fmt.Sprintf("%d", secs))
			c.AbortWithStatusJSON(429, gin.H{
				"ok":    false,
				"error": fmt.Sprintf("Too many requests. Try again in %d seconds", secs),
			})
			return
		}
		c.Next()
	}
}
