package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/searchhub/searchhub/internal/cache"
)

// PageSize is the fixed number of results requested per upstream call.
// A full page is the heuristic for "more might exist".
const PageSize = 5

type HistoryAppender interface {
	Append(ctx context.Context, owner, query string, ts time.Time) error
}

// Service mediates one search: validate, record, fetch, shape. The history
// write happens before the upstream call; recorded intent must survive an
// upstream failure.
type Service struct {
	provider Provider
	history  HistoryAppender
	cache    *cache.Cache
	now      func() time.Time
}

// NewService builds a mediator. responses may be nil to disable the
// short-TTL provider response cache.
func NewService(provider Provider, history HistoryAppender, responses *cache.Cache) *Service {
	return &Service{
		provider: provider,
		history:  history,
		cache:    responses,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Search(ctx context.Context, owner, rawQuery string, start int) (Page, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return Page{}, ErrInvalidQuery
	}

	if start < 1 {
		start = 1
	}

	// Record intent first. The raw query is stored as submitted, and the
	// entry stays even if the upstream call below fails.
	if err := s.history.Append(ctx, owner, rawQuery, s.now()); err != nil {
		return Page{}, fmt.Errorf("append history: %w", err)
	}

	key := cacheKey(rawQuery, start)

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if page, ok := cached.(Page); ok {
				return page, nil
			}
		}
	}

	results, err := s.provider.Fetch(ctx, strings.TrimSpace(rawQuery), start, PageSize)

	if err != nil {
		if _, ok := err.(*UpstreamError); ok {
			return Page{}, err
		}

		return Page{}, &UpstreamError{Message: "search provider failed", Err: err}
	}

	page := Page{
		Results: results,
		HasMore: len(results) == PageSize,
	}

	if page.Results == nil {
		page.Results = []Result{}
	}

	if s.cache != nil {
		s.cache.Set(key, page)
	}

	return page, nil
}

func cacheKey(query string, start int) string {
	return fmt.Sprintf("search:%d:%s", start, strings.ToLower(strings.TrimSpace(query)))
}
