package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ExistenceCache remembers that an entity is known to exist.
type ExistenceCache interface {
	Known(key string) bool
	Remember(key string)
	Forget(key string)
}

// TTLExistenceCache evicts entries ttl after they were remembered.
type TTLExistenceCache struct {
	items *ttlcache.Cache[string, struct{}]
}

func NewTTLExistenceCache(ttl time.Duration) *TTLExistenceCache {
	items := ttlcache.New[string, struct{}](
		ttlcache.WithTTL[string, struct{}](ttl),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)
	return &TTLExistenceCache{items: items}
}

// Start runs expired-item cleanup until Stop is called.
func (c *TTLExistenceCache) Start() {
	go c.items.Start()
}

func (c *TTLExistenceCache) Stop() {
	c.items.Stop()
}

func (c *TTLExistenceCache) Known(key string) bool {
	return c.items.Get(key) != nil
}

func (c *TTLExistenceCache) Remember(key string) {
	c.items.Set(key, struct{}{}, ttlcache.DefaultTTL)
}

func (c *TTLExistenceCache) Forget(key string) {
	c.items.Delete(key)
}

// NoopExistenceCache never remembers anything, so every lookup hits the store.
type NoopExistenceCache struct{}

func (NoopExistenceCache) Known(string) bool { return false }
func (NoopExistenceCache) Remember(string)   {}
func (NoopExistenceCache) Forget(string)     {}
