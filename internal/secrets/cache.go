package secrets

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	value     string
	fetchedAt time.Time
}

// Cache wraps a Provider with a per-key time-boxed cache: a key is refetched
// no more often than the refresh interval. On refetch failure a previously
// cached value keeps being served.
type Cache struct {
	provider        Provider
	refreshInterval time.Duration
	now             func() time.Time

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type CacheOption func(*Cache)

// WithClock overrides the cache clock.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

func NewCache(provider Provider, refreshInterval time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		provider:        provider,
		refreshInterval: refreshInterval,
		now:             time.Now,
		entries:         make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) GetSecretString(ctx context.Context, id string) (string, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.refreshInterval {
		return entry.value, nil
	}

	value, err := c.provider.GetSecretString(ctx, id)
	if err != nil {
		if ok {
			return entry.value, nil
		}
		return "", err
	}

	c.mu.Lock()
	c.entries[id] = cacheEntry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()

	return value, nil
}
