package middleware

import (
	"context"
	"time"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/cache"
)

// RateStore coordinates rate limiting counters for a specific key.
type RateStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, ttl time.Duration, err error)
}

// storeRateStore adapts a cache.Store to RateStore so every backend the
// service supports can hold HTTP quotas.
type storeRateStore struct {
	store cache.Store
}

// NewStoreRateStore wraps store. A nil store yields nil.
func NewStoreRateStore(store cache.Store) RateStore {
	if store == nil {
		return nil
	}
	return &storeRateStore{store: store}
}

func (s *storeRateStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	if window <= 0 {
		window = time.Minute
	}
	count, ttl, err := s.store.IncrementWithTTL(ctx, key, window)
	return int(count), ttl, err
}
