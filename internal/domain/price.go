package domain

import (
	"sort"
	"strings"
	"time"
)

const (
	DefaultFromID = "tether"
	DefaultToID   = "bitcoin"
)

// QuoteSource tells where a served quote came from.
type QuoteSource string

const (
	SourceLive     QuoteSource = "live"
	SourceCache    QuoteSource = "cache"
	SourceStale    QuoteSource = "stale"
	SourceFallback QuoteSource = "fallback"
)

type USDPrice struct {
	USD float64 `json:"usd"`
}

// Quote maps an asset identifier to its USD price.
type Quote map[string]USDPrice

func (q Quote) Clone() Quote {
	out := make(Quote, len(q))
	for id, p := range q {
		out[id] = p
	}
	return out
}

// PriceQuery is an ordered pair of asset identifiers.
type PriceQuery struct {
	From string
	To   string
}

// NewPriceQuery normalizes identifiers and applies the tether/bitcoin defaults.
func NewPriceQuery(from, to string) PriceQuery {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	if from == "" {
		from = DefaultFromID
	}
	if to == "" {
		to = DefaultToID
	}
	return PriceQuery{From: from, To: to}
}

// IDs returns the de-duplicated identifier set, sorted.
func (q PriceQuery) IDs() []string {
	if q.From == q.To {
		return []string{q.From}
	}
	ids := []string{q.From, q.To}
	sort.Strings(ids)
	return ids
}

// CacheKey is order independent: from=a&to=b and from=b&to=a share one entry.
func (q PriceQuery) CacheKey() string {
	return strings.Join(q.IDs(), ",")
}

// QuoteEvent describes one answer served by the price proxy.
type QuoteEvent struct {
	ID       string      `json:"id"`
	CacheKey string      `json:"cache_key"`
	IDs      []string    `json:"ids"`
	Source   QuoteSource `json:"source"`
	Prices   Quote       `json:"prices"`
	ServedAt time.Time   `json:"served_at"`
}

// BackoffSnapshot is a read-only view of the proxy's rate-limit state.
type BackoffSnapshot struct {
	Failures int       `json:"consecutive_failures"`
	EndTime  time.Time `json:"backoff_end_time"`
	Active   bool      `json:"active"`
}
