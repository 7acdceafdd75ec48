package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheItem[T any] struct {
	value     T
	expiresAt time.Time
}

// Compile-time interface check.
var _ Cache[struct{}] = (*MemoryCache[struct{}])(nil)

// MemoryCache implements Cache with an in-process LRU of bounded capacity.
// Overflow evicts the least-recently-used entry; expiry is lazy (checked on
// Get). Suitable for single-instance deployments.
type MemoryCache[T any] struct {
	items *lru.Cache[string, cacheItem[T]]
}

// NewMemoryCache creates a memory cache holding at most size entries.
func NewMemoryCache[T any](size int) (*MemoryCache[T], error) {
	items, err := lru.New[string, cacheItem[T]](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	return &MemoryCache[T]{items: items}, nil
}

// Get retrieves a value from cache.
func (m *MemoryCache[T]) Get(ctx context.Context, key string) (T, error) {
	item, exists := m.items.Get(key)
	if !exists {
		var zero T
		return zero, ErrCacheMiss
	}

	// Lazy expiration check
	if time.Now().After(item.expiresAt) {
		m.items.Remove(key)
		var zero T
		return zero, ErrCacheMiss
	}

	return item.value, nil
}

// Set stores a value in cache with TTL.
func (m *MemoryCache[T]) Set(ctx context.Context, key string, value T, ttl time.Duration) error {
	m.items.Add(key, cacheItem[T]{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})

	return nil
}

// Delete removes a key from cache.
func (m *MemoryCache[T]) Delete(ctx context.Context, key string) error {
	m.items.Remove(key)
	return nil
}

// Close cleans up resources.
func (m *MemoryCache[T]) Close() error {
	m.items.Purge()
	return nil
}

// Health checks if the cache is healthy (always true for memory cache).
func (m *MemoryCache[T]) Health(ctx context.Context) error {
	return nil
}

// Len reports the number of entries currently cached, expired or not.
func (m *MemoryCache[T]) Len() int {
	return m.items.Len()
}
