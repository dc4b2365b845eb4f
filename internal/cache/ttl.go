package cache

import "time"

// Timed is a value stamped with its expiry.
type Timed[V any] struct {
	Value     V
	ExpiresAt time.Time
}

// TTL expires entries a fixed duration after they are written. It
// delegates storage, and any size policy, to the wrapped Store.
type TTL[K comparable, V any] struct {
	store Store[K, Timed[V]]
	ttl   time.Duration
	now   func() time.Time
}

// NewTTL wraps store. A nil now means time.Now.
func NewTTL[K comparable, V any](store Store[K, Timed[V]], ttl time.Duration, now func() time.Time) *TTL[K, V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &TTL[K, V]{store: store, ttl: ttl, now: now}
}

// Get treats an expired entry as missing and drops it.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	var zero V

	e, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	if !c.now().Before(e.ExpiresAt) {
		c.store.Remove(key)
		return zero, false
	}
	return e.Value, true
}

func (c *TTL[K, V]) Set(key K, value V) {
	c.store.Set(key, Timed[V]{Value: value, ExpiresAt: c.now().Add(c.ttl)})
}

func (c *TTL[K, V]) Remove(key K) bool {
	return c.store.Remove(key)
}

func (c *TTL[K, V]) Len() int {
	return c.store.Len()
}
