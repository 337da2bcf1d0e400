package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned when a key is not present or has expired.
var ErrMiss = errors.New("cache: miss")

// BytesCache stores opaque byte payloads under string keys with a TTL.
// Callers own the serialization; the usecase layer stores JSON.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
