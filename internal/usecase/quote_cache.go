package usecase

import (
	"sync"
	"time"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
)

// QuoteCache keeps the last successful upstream answer per identifier set.
// Entries are never evicted: once past the TTL they stay around as stale
// fallback data until a newer fetch overwrites them.
type QuoteCache struct {
	entries map[string]CachedQuote
	ttl     time.Duration
	mu      sync.RWMutex
}

type CachedQuote struct {
	Quote      domain.Quote
	CapturedAt time.Time
}

func NewQuoteCache(ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		entries: make(map[string]CachedQuote),
		ttl:     ttl,
	}
}

// Get returns the entry for key regardless of age.
func (c *QuoteCache) Get(key string) (CachedQuote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, exists := c.entries[key]
	return cached, exists
}

// Fresh reports whether the entry is younger than the cache TTL at now.
func (c *QuoteCache) Fresh(cached CachedQuote, now time.Time) bool {
	return now.Sub(cached.CapturedAt) < c.ttl
}

func (c *QuoteCache) Set(key string, quote domain.Quote, capturedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = CachedQuote{
		Quote:      quote.Clone(),
		CapturedAt: capturedAt,
	}
}

func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
