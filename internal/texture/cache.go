package texture

import (
	"image"
	"sync"

	"glowview/internal/logx"
)

// Resolver resolves a texture key to a decoded image, or nil when the
// texture cannot be loaded.
type Resolver interface {
	Resolve(key string) *image.NRGBA
}

// LoadFunc loads the texture identified by key.
type LoadFunc func(key string) (*image.NRGBA, error)

// Cache is a concurrency-safe texture cache. Failed loads are cached too,
// so a broken texture is reported once.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	load  LoadFunc
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache returns a cache that fills misses with load. A nil load reads
// keys as file paths.
func NewCache(load LoadFunc) *Cache {
	if load == nil {
		load = LoadTexture
	}
	return &Cache{
		items: make(map[string]*cacheEntry),
		load:  load,
	}
}

// Resolve loads and caches a texture by key. Returns nil if it cannot be loaded.
func (c *Cache) Resolve(key string) *image.NRGBA {
	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.img
	}
	c.mu.RUnlock()

	img, err := c.load(key)

	c.mu.Lock()
	if entry, exists := c.items[key]; exists {
		c.mu.Unlock()
		return entry.img
	}
	c.items[key] = &cacheEntry{img: img, err: err}
	c.mu.Unlock()

	if err != nil {
		logx.Logger().Warn("texture unavailable", "key", key, "err", err)
	}
	return img
}

// Len returns the number of cached keys, failed ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge drops every cached texture.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.items = make(map[string]*cacheEntry)
	c.mu.Unlock()
}
