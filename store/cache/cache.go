// Package cache provides a small in-memory TTL cache used by the store layer
// to avoid repeated lookups of hot rows (users, preferences).
package cache

import (
	"context"
	"sync"
	"time"
)

// Config holds the cache configuration.
type Config struct {
	// DefaultTTL is the lifetime of an entry. Zero disables expiry.
	DefaultTTL time.Duration
	// CleanupInterval controls how often expired entries are swept.
	CleanupInterval time.Duration
	// MaxItems caps the number of entries. When full, an arbitrary expired
	// entry is evicted first; otherwise the set is rejected silently.
	MaxItems int
	// OnEviction is called for entries removed by the sweeper.
	OnEviction func(key string, value any)
}

type item struct {
	value     any
	expiresAt time.Time
}

// Cache is a concurrency-safe in-memory key-value cache.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]item
	config Config
	stop   chan struct{}
	once   sync.Once
}

// New creates a cache and starts its background sweeper.
func New(config Config) *Cache {
	c := &Cache{
		items:  make(map[string]item),
		config: config,
		stop:   make(chan struct{}),
	}
	if config.CleanupInterval > 0 {
		go c.sweep()
	}
	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache) Get(_ context.Context, key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !it.expiresAt.IsZero() && time.Now().After(it.expiresAt) {
		c.Delete(context.Background(), key)
		return nil, false
	}
	return it.value, true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(_ context.Context, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.MaxItems > 0 && len(c.items) >= c.config.MaxItems {
		if _, exists := c.items[key]; !exists {
			c.evictOneLocked()
			if len(c.items) >= c.config.MaxItems {
				return
			}
		}
	}

	var expiresAt time.Time
	if c.config.DefaultTTL > 0 {
		expiresAt = time.Now().Add(c.config.DefaultTTL)
	}
	c.items[key] = item{value: value, expiresAt: expiresAt}
}

// Delete removes key from the cache.
func (c *Cache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Close stops the background sweeper.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) evictOneLocked() {
	now := time.Now()
	for k, it := range c.items {
		if !it.expiresAt.IsZero() && now.After(it.expiresAt) {
			delete(c.items, k)
			return
		}
	}
}

func (c *Cache) sweep() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) removeExpired() {
	now := time.Now()
	var evicted []struct {
		key   string
		value any
	}

	c.mu.Lock()
	for k, it := range c.items {
		if !it.expiresAt.IsZero() && now.After(it.expiresAt) {
			if c.config.OnEviction != nil {
				evicted = append(evicted, struct {
					key   string
					value any
				}{k, it.value})
			}
			delete(c.items, k)
		}
	}
	c.mu.Unlock()

	for _, e := range evicted {
		c.config.OnEviction(e.key, e.value)
	}
}
