package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestLimiter(maxRequests int, window time.Duration) (*RateLimiter, *time.Time) {
	limiter := NewRateLimiter()
	limiter.AddTier("test", RateLimitConfig{MaxRequests: maxRequests, Window: window})
	clock := time.Now()
	limiter.now = func() time.Time { return clock }
	return limiter, &clock
}

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	limiter, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		_, allowed := limiter.Check("test", "1.2.3.4")
		assert.True(t, allowed)
	}
}

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		limiter.Check("test", "1.2.3.4")
	}

	retryAfter, allowed := limiter.Check("test", "1.2.3.4")
	assert.False(t, allowed)
	assert.GreaterOrEqual(t, retryAfter, time.Second)
	assert.LessOrEqual(t, retryAfter, time.Minute)
}

func TestRateLimiterPerIPIsolation(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)

	_, allowed := limiter.Check("test", "1.2.3.4")
	assert.True(t, allowed)
	_, allowed = limiter.Check("test", "1.2.3.4")
	assert.False(t, allowed)

	// Another IP keeps its own budget
	_, allowed = limiter.Check("test", "5.6.7.8")
	assert.True(t, allowed)
}

func TestRateLimiterPerTierIsolation(t *testing.T) {
	limiter := NewRateLimiter()
	limiter.AddTier("strict", RateLimitConfig{MaxRequests: 1, Window: time.Minute})
	limiter.AddTier("loose", RateLimitConfig{MaxRequests: 10, Window: time.Minute})

	_, allowed := limiter.Check("strict", "1.2.3.4")
	assert.True(t, allowed)
	_, allowed = limiter.Check("strict", "1.2.3.4")
	assert.False(t, allowed)

	_, allowed = limiter.Check("loose", "1.2.3.4")
	assert.True(t, allowed)
}

func TestRateLimiterWindowSlides(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Minute)

	limiter.Check("test", "1.2.3.4")
	limiter.Check("test", "1.2.3.4")
	_, allowed := limiter.Check("test", "1.2.3.4")
	assert.False(t, allowed)

	// Once the oldest request leaves the window, one request is allowed again
	*clock = clock.Add(61 * time.Second)
	_, allowed = limiter.Check("test", "1.2.3.4")
	assert.True(t, allowed)
}

func TestRateLimiterUnknownTierFailsOpen(t *testing.T) {
	limiter := NewRateLimiter()

	_, allowed := limiter.Check("missing", "1.2.3.4")
	assert.True(t, allowed)
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter, clock := newTestLimiter(5, time.Minute)

	limiter.Check("test", "1.2.3.4")
	*clock = clock.Add(90 * time.Second)
	limiter.Check("test", "5.6.7.8")

	// 1.2.3.4 is within 2x window, both survive
	limiter.Cleanup()
	limiter.mu.Lock()
	assert.Len(t, limiter.tiers["test"].clients, 2)
	limiter.mu.Unlock()

	// Push 1.2.3.4's only timestamp past the 2x window cutoff
	*clock = clock.Add(60 * time.Second)
	limiter.Cleanup()
	limiter.mu.Lock()
	_, staleKept := limiter.tiers["test"].clients["1.2.3.4"]
	_, activeKept := limiter.tiers["test"].clients["5.6.7.8"]
	limiter.mu.Unlock()
	assert.False(t, staleKept)
	assert.True(t, activeKept)
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(c))

	// Garbage in the header falls back to the peer address
	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Request = httptest.NewRequest("GET", "/", nil)
	c2.Request.Header.Set("X-Forwarded-For", "not-an-ip")
	c2.Request.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", ClientIP(c2))
}

func TestRateLimitMiddlewareRejectsWithRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter, _ := newTestLimiter(1, time.Minute)
	r := gin.New()
	r.GET("/ping", RateLimitMiddleware(limiter, "test"), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, 429, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"ok":false`)
}
