package middlewares

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/rfq-engine/internal/common"
	"github.com/hxuan190/rfq-engine/internal/http/httputil"
)

type bucket struct {
	tokens   float64
	lastTime time.Time
}

// RateLimiter is a per client IP token bucket refilled at rate tokens per
// second up to burst.
type RateLimiter struct {
	mu      sync.Mutex
	rate    float64
	burst   float64
	buckets map[string]*bucket

	// a bucket idle for refill is full again and indistinguishable from a new one
	refill    time.Duration
	lastSweep time.Time

	now func() time.Time
}

func NewRateLimiter(rate, burst int) *RateLimiter {
	refill := time.Minute
	if rate > 0 {
		refill = time.Duration(float64(burst) / float64(rate) * float64(time.Second))
	}
	if refill < time.Second {
		refill = time.Second
	}
	return &RateLimiter{
		rate:    float64(rate),
		burst:   float64(burst),
		buckets: make(map[string]*bucket),
		refill:  refill,
		now:     time.Now,
	}
}

// Allow takes one token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.refill {
		rl.sweep(now)
	}
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.burst, lastTime: now}
		rl.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastTime).Seconds() * rl.rate
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastTime = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets untouched for a full refill period. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, b := range rl.buckets {
		if now.Sub(b.lastTime) >= rl.refill {
			delete(rl.buckets, key)
		}
	}
	rl.lastSweep = now
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			httputil.Error(c, common.HTTPErrorTooManyRequests(""))
			return
		}
		c.Next()
	}
}
