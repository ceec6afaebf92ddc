package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/searchhub/searchhub/internal/domain/user"
)

var ErrUserNotFound = errors.New("user not found")

// UsersRepo is the in-process stand-in used when no database is configured
// (local demo mode). Behavior mirrors the postgres repo.
type UsersRepo struct {
	mu sync.RWMutex
	m  map[string]user.User // keyed by email
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{m: make(map[string]user.User)}
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.m[email]

	if !ok {
		return user.User{}, ErrUserNotFound
	}

	return u, nil
}

func (r *UsersRepo) Upsert(ctx context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.m[u.Email]; ok {
		// keep the original identity and creation time
		u.ID = existing.ID
		u.CreatedAt = existing.CreatedAt
	}

	r.m[u.Email] = u

	return nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(r.m))

	for _, u := range r.m {
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}

		return out[i].Email < out[j].Email
	})

	return out, nil
}
