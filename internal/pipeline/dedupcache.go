package pipeline

import (
	"strings"
	"sync"
	"time"
)

// dedupCache suppresses rapid redelivery of the same trigger notification
// within one running process. Entries expire after a fixed TTL and expired
// entries are swept opportunistically on every insert.
//
// The cache is best effort only: it does not survive a restart and is not
// shared across instances. The durable existence check on the output
// object remains the correctness mechanism; this only trims redundant work.
type dedupCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

func newDedupCache(ttl time.Duration) *dedupCache {
	return &dedupCache{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// deliveryKey builds the composite suppression key for one delivery.
func deliveryKey(deliveryID, bucket, object string) string {
	return strings.Join([]string{deliveryID, bucket, object}, "|")
}

// Seen reports whether the key was recorded within the TTL window.
func (c *dedupCache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	lastSeen, ok := c.entries[key]
	return ok && c.now().Sub(lastSeen) < c.ttl
}

// Record marks the key as seen now and sweeps expired entries.
func (c *dedupCache) Record(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, lastSeen := range c.entries {
		if now.Sub(lastSeen) >= c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = now
}

// Len returns the number of retained entries, expired or not.
func (c *dedupCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
