package cache

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable is returned when a store method is invoked on a nil backend.
var ErrStoreUnavailable = errors.New("cache: store not initialised")

// Store is the shared key/value and counter store owned by the server instance.
// Counters use fixed windows: the expiry is set when a key is created and is not
// extended by later increments.
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}

const defaultCounterWindow = time.Minute

func counterWindow(window time.Duration) time.Duration {
	if window <= 0 {
		return defaultCounterWindow
	}
	return window
}
