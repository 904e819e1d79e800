package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
)

// MemoryAdapter is an in-process CacheProvider used when Redis is not configured.
// Entries are lost on restart and are not shared between replicas.
type MemoryAdapter struct {
	store *gocache.Cache
}

// NewMemoryAdapter creates an in-process cache that sweeps expired entries every cleanupInterval.
func NewMemoryAdapter(cleanupInterval time.Duration) providers.CacheProvider {
	return &MemoryAdapter{
		store: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

func ttl(expirationSeconds int) time.Duration {
	if expirationSeconds <= 0 {
		return gocache.NoExpiration
	}
	return time.Duration(expirationSeconds) * time.Second
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := a.store.Get(key)
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return data, nil
}

// Set stores a copy of value with expiration
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, expirationSeconds int) error {
	data := make([]byte, len(value))
	copy(data, value)
	a.store.Set(key, data, ttl(expirationSeconds))
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.store.Delete(key)
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(_ context.Context, key string) (bool, error) {
	_, ok := a.store.Get(key)
	return ok, nil
}

// Incr increments a counter. The first increment of a key starts its expiry window.
func (a *MemoryAdapter) Incr(_ context.Context, key string, expirationSeconds int) (int64, error) {
	if err := a.store.Add(key, int64(1), ttl(expirationSeconds)); err == nil {
		return 1, nil
	}

	count, err := a.store.IncrementInt64(key, 1)
	if err != nil {
		if _, found := a.store.Get(key); found {
			return 0, err
		}
		// expired between Add and IncrementInt64
		a.store.Set(key, int64(1), ttl(expirationSeconds))
		return 1, nil
	}
	return count, nil
}
