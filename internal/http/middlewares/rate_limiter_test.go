package middlewares_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/searchhub/searchhub/internal/http/middlewares"
)

func limitedRouter(rl *middlewares.RateLimiter, keyFn func(*gin.Context) string) *gin.Engine {
	r := gin.New()
	r.POST("/api/login", rl.Middleware(keyFn), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func fireLogin(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.Header.Set("X-Test-Key", key)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func keyFromHeader(c *gin.Context) string {
	return c.GetHeader("X-Test-Key")
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	rl := middlewares.NewRateLimiter(20, time.Minute, nil)
	r := limitedRouter(rl, keyFromHeader)

	for i := 1; i <= 20; i++ {
		w := fireLogin(r, "1.2.3.4")
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200", i, w.Code)
		}
	}

	w := fireLogin(r, "1.2.3.4")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("21st request: got status %d, want 429", w.Code)
	}

	ra := w.Header().Get("Retry-After")
	if ra == "" {
		t.Fatal("expected Retry-After header on 429")
	}
	if secs, err := strconv.Atoi(ra); err != nil || secs < 0 || secs > 60 {
		t.Fatalf("Retry-After = %q, want integer seconds within the window", ra)
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := middlewares.NewRateLimiter(2, time.Minute, nil)
	r := limitedRouter(rl, keyFromHeader)

	fireLogin(r, "1.1.1.1")
	fireLogin(r, "1.1.1.1")

	if w := fireLogin(r, "1.1.1.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("exhausted key: got status %d, want 429", w.Code)
	}

	if w := fireLogin(r, "2.2.2.2"); w.Code != http.StatusOK {
		t.Fatalf("fresh key: got status %d, want 200", w.Code)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, 30*time.Millisecond, nil)
	r := limitedRouter(rl, keyFromHeader)

	if w := fireLogin(r, "k"); w.Code != http.StatusOK {
		t.Fatalf("first request: got status %d, want 200", w.Code)
	}
	if w := fireLogin(r, "k"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got status %d, want 429", w.Code)
	}

	time.Sleep(40 * time.Millisecond)

	if w := fireLogin(r, "k"); w.Code != http.StatusOK {
		t.Fatalf("after window: got status %d, want 200", w.Code)
	}
}

type brokenStore struct{}

func (brokenStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	return 0, 0, errors.New("store down")
}

func TestRateLimiter_FailsOpenOnStoreError(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, time.Minute, brokenStore{})
	r := limitedRouter(rl, keyFromHeader)

	for i := 0; i < 5; i++ {
		if w := fireLogin(r, "k"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want 200 when store errors", i, w.Code)
		}
	}
}

func TestRateLimiter_OnRejectHook(t *testing.T) {
	rl := middlewares.NewRateLimiter(1, time.Minute, nil)

	var rejected int
	rl.OnReject(func(route string) {
		rejected++
		if route != "/api/login" {
			t.Errorf("hook route = %q, want /api/login", route)
		}
	})

	r := limitedRouter(rl, keyFromHeader)

	fireLogin(r, "k")
	fireLogin(r, "k")
	fireLogin(r, "k")

	if rejected != 2 {
		t.Fatalf("reject hook fired %d times, want 2", rejected)
	}
}
