package search

import (
	"context"
	"sync"
	"time"
)

type ProtectedProviderConfig struct {
	Timeout          time.Duration // hard timeout per upstream call
	FailureThreshold int           // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // allow N trial calls in half-open
}

// ProtectedProvider wraps a Provider with a per-call timeout and a
// consecutive-failure circuit breaker. An open circuit fails fast with an
// UpstreamError, which the caller surfaces as 502; there are no retries.
type ProtectedProvider struct {
	inner Provider
	cfg   ProtectedProviderConfig
	mu    sync.Mutex

	state string // "closed" | "open" | "half_open"

	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedProvider(inner Provider, cfg ProtectedProviderConfig) *ProtectedProvider {
	//defaults
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedProvider{
		inner: inner,
		cfg:   cfg,
		state: "closed",
	}
}

func (p *ProtectedProvider) Fetch(ctx context.Context, query string, start, num int) ([]Result, error) {
	// fail-fast gate

	if !p.allowRequest() {
		return nil, &UpstreamError{Message: "search provider unavailable"}
	}

	// enforce timeout

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	results, err := p.inner.Fetch(fetchCtx, query, start, num)

	p.afterRequest(err)

	return results, err
}

func (p *ProtectedProvider) allowRequest() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case "closed":
		return true
	case "open":
		// cooldown has passed? move to half open

		if time.Since(p.openedAt) >= p.cfg.Cooldown {
			p.state = "half_open"
			p.halfOpenInFlight = 1
			return true
		}
		return false
	case "half_open":
		if p.halfOpenInFlight >= p.cfg.HalfOpenMaxCalls {
			return false
		}
		p.halfOpenInFlight++
		return true

	default:
		// safe fallback
		return true
	}
}

func (p *ProtectedProvider) afterRequest(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// half-open call just finished
	if p.state == "half_open" && p.halfOpenInFlight > 0 {
		p.halfOpenInFlight--
	}

	if err == nil {
		// success => close circuit and reset counters
		p.consecutiveFailures = 0
		p.state = "closed"
		return
	}

	// failure
	p.consecutiveFailures++

	// if half-open failed, reopen immediately
	if p.state == "half_open" {
		p.state = "open"
		p.openedAt = time.Now()
		return
	}

	// if failures reached threshold, open circuit
	if p.consecutiveFailures >= p.cfg.FailureThreshold {
		p.state = "open"
		p.openedAt = time.Now()
	}
}
