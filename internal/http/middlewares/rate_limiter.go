package middlewares

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// CounterStore counts hits for a key inside the current fixed window and
// reports how long until that window resets. Implementations: in-process
// map (below) and Redis (ratelimit_redis.go).
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, retryAfter time.Duration, err error)
}

type RateLimiter struct {
	store    CounterStore
	limit    int
	window   time.Duration
	onReject func(route string)
}

func NewRateLimiter(limit int, window time.Duration, store CounterStore) *RateLimiter {
	if store == nil {
		store = NewMemoryCounterStore()
	}

	return &RateLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

// OnReject registers a hook fired once per rejected request (metrics).
func (rl *RateLimiter) OnReject(fn func(route string)) {
	rl.onReject = fn
}

// Middleware returns a gin.HandlerFunc that enforces the limit for a derived key

func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			// fallback to IP if key cannot be derived

			key = clientIP(c)
		}

		count, retryAfter, err := rl.store.Incr(c.Request.Context(), key, rl.window)

		if err != nil {
			// counter store trouble must not take the endpoint down; let
			// the request through
			c.Next()
			return
		}

		if count > rl.limit {
			if rl.onReject != nil {
				rl.onReject(c.FullPath())
			}

			secs := int(retryAfter.Seconds())

			if secs < 0 {
				secs = 0
			}

			c.Header("Retry-After", strconv.Itoa(secs))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests. Please try again shortly.",
				},
			})

			return
		}

		c.Next()
	}
}

// MemoryCounterStore keeps fixed-window counters in a map. Windows decay
// on their own when the next hit arrives past the boundary; keys never
// interfere with one another.
type MemoryCounterStore struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{clients: make(map[string]*clientBucket)}
}

func (s *MemoryCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.clients[key]

	if !ok || now.After(b.windowEnd) {
		b = &clientBucket{windowEnd: now.Add(window)}
		s.clients[key] = b
	}

	b.count++

	return b.count, time.Until(b.windowEnd), nil
}

// helper functions

// for unauthenticated endpoints: rate limit by IP
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	// Normalize host:port forms

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
