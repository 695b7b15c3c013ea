package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pourcost/backend/internal/domain"
)

const defaultCleanupInterval = 10 * time.Minute

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	Value      interface{}
	Expiration time.Time
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.Expiration.IsZero() && now.After(i.Expiration)
}

// MemoryCache is a thread-safe in-memory cache with TTL support. It is used
// when no Redis address is configured.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryCache creates an in-memory cache that evicts expired entries
// every cleanupInterval. A non-positive interval uses the default.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}

	cache := &MemoryCache{
		data: make(map[string]cacheItem),
		stop: make(chan struct{}),
	}
	go cache.cleanupExpired(cleanupInterval)

	return cache
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists || item.expired(time.Now()) {
		return nil, domain.ErrCacheMiss
	}

	return item.Value, nil
}

// Set stores a value in the cache. A zero ttl never expires.
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	// Round-trip through JSON so callers see the same shapes as with Redis
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var storedValue interface{}
	if err := json.Unmarshal(jsonData, &storedValue); err != nil {
		return err
	}

	item := cacheItem{Value: storedValue}
	if ttl > 0 {
		item.Expiration = time.Now().Add(ttl)
	}

	c.mutex.Lock()
	c.data[key] = item
	c.mutex.Unlock()

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	return exists && !item.expired(time.Now()), nil
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *MemoryCache) evictExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	for key, item := range c.data {
		if item.expired(now) {
			delete(c.data, key)
		}
	}
}

// Size returns the current number of items in the cache, expired or not
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}
