package cache

import (
	"context"
	"errors"
	"time"
)

// Layered reads through a fast local cache before falling back to a
// shared remote one. Writes go to both; local entries carry a capped
// TTL so remote invalidation is picked up quickly.
type Layered struct {
	local    BytesCache
	remote   BytesCache
	localTTL time.Duration
}

// NewLayered combines a local and a remote cache. localTTL caps how long
// the local layer may serve a value fetched from the remote layer.
func NewLayered(local, remote BytesCache, localTTL time.Duration) *Layered {
	return &Layered{local: local, remote: remote, localTTL: localTTL}
}

func (l *Layered) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := l.local.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrMiss) {
		return nil, err
	}

	value, err = l.remote.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = l.local.Set(ctx, key, value, l.localTTL)
	return value, nil
}

func (l *Layered) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	localTTL := ttl
	if localTTL > l.localTTL {
		localTTL = l.localTTL
	}
	if err := l.local.Set(ctx, key, value, localTTL); err != nil {
		return err
	}
	return l.remote.Set(ctx, key, value, ttl)
}

func (l *Layered) Delete(ctx context.Context, key string) error {
	if err := l.local.Delete(ctx, key); err != nil {
		return err
	}
	return l.remote.Delete(ctx, key)
}
