package middlewares

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore keeps fixed-window counters in Redis so the limit
// holds across replicas. The key's TTL is the window; INCR past the
// boundary starts a fresh window.
type RedisCounterStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb, prefix: "ratelimit:"}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	full := s.prefix + key

	count, err := s.rdb.Incr(ctx, full).Result()

	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if err := s.rdb.Expire(ctx, full, window).Err(); err != nil {
			return 0, 0, err
		}

		return int(count), window, nil
	}

	ttl, err := s.rdb.TTL(ctx, full).Result()

	if err != nil || ttl < 0 {
		// Lost or missing expiry; re-arm so the key cannot live forever.
		_ = s.rdb.Expire(ctx, full, window).Err()
		ttl = window
	}

	return int(count), ttl, nil
}
