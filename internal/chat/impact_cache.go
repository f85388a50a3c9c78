package chat

import (
	"context"
	"sync"
	"time"
)

// ImpactCache maps incident ids to their latest zone-analysis impact summary
// so chat prompts can reuse it without re-running the analysis. Entries
// expire after the TTL; eviction is best effort and the cache is never
// authoritative.
type ImpactCache struct {
	mu      sync.Mutex
	entries map[string]impactEntry
	ttl     time.Duration
	now     func() time.Time
}

type impactEntry struct {
	summary   string
	expiresAt time.Time
}

func NewImpactCache(ttl time.Duration) *ImpactCache {
	return &ImpactCache{
		entries: make(map[string]impactEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *ImpactCache) Put(incidentID, summary string) {
	c.mu.Lock()
	c.entries[incidentID] = impactEntry{
		summary:   summary,
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

func (c *ImpactCache) Get(incidentID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[incidentID]
	if !ok || c.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.summary, true
}

// StartJanitor evicts expired entries periodically until ctx is canceled.
func (c *ImpactCache) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.evictExpired()
			}
		}
	}()
}

func (c *ImpactCache) evictExpired() {
	now := c.now()
	c.mu.Lock()
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
	c.mu.Unlock()
}
