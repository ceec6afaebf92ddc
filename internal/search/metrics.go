package search

import (
	"context"
	"time"
)

// UpstreamObserver records one upstream call. Implemented by the
// observability package; kept as a local interface so this package stays
// free of metric wiring.
type UpstreamObserver interface {
	ObserveUpstream(status string, seconds float64, results int)
}

// InstrumentedProvider reports call latency and result counts for every
// Fetch that passes through it.
type InstrumentedProvider struct {
	inner Provider
	obs   UpstreamObserver
}

func NewInstrumentedProvider(inner Provider, obs UpstreamObserver) *InstrumentedProvider {
	return &InstrumentedProvider{inner: inner, obs: obs}
}

func (p *InstrumentedProvider) Fetch(ctx context.Context, query string, start, num int) ([]Result, error) {
	began := time.Now()

	results, err := p.inner.Fetch(ctx, query, start, num)

	status := "ok"

	if err != nil {
		status = "error"
	}

	if p.obs != nil {
		p.obs.ObserveUpstream(status, time.Since(began).Seconds(), len(results))
	}

	return results, err
}
