package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// ──────────────────────────────────────────────────────────────────────────────
// Per-client token buckets
// ──────────────────────────────────────────────────────────────────────────────

const (
	// minBurst keeps very low allowances (auction starts) from rejecting a
	// borrower who fires a handful of requests while setting up a round.
	minBurst = 10

	evictInterval = 5 * time.Minute
	bucketIdleTTL = 10 * time.Minute
)

// tokenBucket tracks one client's remaining allowance.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// clientLimiter holds a token bucket per client IP. Auction starts and reads
// get separate limiters with rates supplied by config.RateLimitConfig.
type clientLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*tokenBucket
	rate    float64 // tokens per second
	burst   float64 // bucket capacity
}

func newClientLimiter(rps int) *clientLimiter {
	burst := float64(rps)
	if burst < minBurst {
		burst = minBurst
	}
	return &clientLimiter{
		buckets: make(map[string]*tokenBucket),
		rate:    float64(rps),
		burst:   burst,
	}
}

// take deducts one token from the client's bucket, refilling it first based on
// elapsed time. Returns false when the bucket is empty.
func (l *clientLimiter) take(key string) bool {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		if b, ok = l.buckets[key]; !ok {
			b = &tokenBucket{tokens: l.burst, lastRefill: time.Now()}
			l.buckets[key] = b
		}
		l.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// evictIdle drops buckets that have not been touched for bucketIdleTTL so the
// map does not grow without bound. Runs forever; start it in a goroutine.
func (l *clientLimiter) evictIdle() {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-bucketIdleTTL)
		l.mu.Lock()
		for ip, b := range l.buckets {
			b.mu.Lock()
			if b.lastRefill.Before(cutoff) {
				delete(l.buckets, ip)
			}
			b.mu.Unlock()
		}
		l.mu.Unlock()
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Middleware
// ──────────────────────────────────────────────────────────────────────────────

// RateLimitMiddleware enforces a per-IP token bucket of rps requests per
// second. Rejections use the standard error envelope with a 429 status so API
// clients can distinguish throttling from auth and validation failures.
func RateLimitMiddleware(rps int) gin.HandlerFunc {
	l := newClientLimiter(rps)
	go l.evictIdle()

	return func(c *gin.Context) {
		if !l.take(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "request rate limit exceeded",
				"code":    "ERR_RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
