package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/searchhub/searchhub/internal/domain/history"
)

// HistoryLimit matches the postgres repo's listing cap.
const HistoryLimit = 20

type HistoryRepo struct {
	mu      sync.RWMutex
	entries []history.Entry
}

func NewHistoryRepo() *HistoryRepo {
	return &HistoryRepo{}
}

func (r *HistoryRepo) Append(ctx context.Context, owner, query string, ts time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, history.Entry{
		Owner:     owner,
		Query:     query,
		Timestamp: ts,
	})

	return nil
}

func (r *HistoryRepo) ListByOwner(ctx context.Context, owner string) ([]history.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []history.Entry

	for _, e := range r.entries {
		if e.Owner == owner {
			out = append(out, e)
		}
	}

	sortNewestFirst(out)

	if len(out) > HistoryLimit {
		out = out[:HistoryLimit]
	}

	return out, nil
}

func (r *HistoryRepo) Clear(ctx context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.entries[:0]

	for _, e := range r.entries {
		if e.Owner != owner {
			kept = append(kept, e)
		}
	}

	r.entries = kept

	return nil
}

func (r *HistoryRepo) ListAll(ctx context.Context) ([]history.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]history.Entry, len(r.entries))
	copy(out, r.entries)

	sortNewestFirst(out)

	return out, nil
}

// sortNewestFirst orders entries by timestamp descending; append order
// breaks ties so equal timestamps stay stable.
func sortNewestFirst(entries []history.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
