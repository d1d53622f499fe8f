package middlewares

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterBurstAndRefill(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(2, 3)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.1.1.1"), "request %d within burst", i)
	}
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "buckets are per key")

	now = now.Add(500 * time.Millisecond)
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))

	now = now.Add(time.Hour)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.1.1.1"))
	}
	assert.False(t, rl.Allow("1.1.1.1"), "refill is capped at burst")
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return time.Unix(0, 0) }

	r := gin.New()
	r.GET("/", rl.RateLimitMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"code":"too_many_requests","message":"Rate limit exceeded"}`, w.Body.String())
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(1, 5)
	rl.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		rl.Allow(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.Len(t, rl.buckets, 101)

	now = now.Add(4 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.Len(t, rl.buckets, 101, "buckets still refilling are kept")

	now = now.Add(2 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.Len(t, rl.buckets, 1, "idle buckets are dropped")

	for i := 0; i < 4; i++ {
		assert.True(t, rl.Allow("1.1.1.1"))
	}
	assert.False(t, rl.Allow("1.1.1.1"), "active bucket keeps its count across a sweep")
}
