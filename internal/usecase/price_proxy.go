package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/fallback"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/metrics"
)

const simplePriceEndpoint = "simple/price"

type PriceProxy interface {
	// Rates never fails: when live data is unavailable it answers from the
	// stale cache or the fallback table.
	Rates(ctx context.Context, from, to string) (domain.Quote, domain.QuoteSource)
	Backoff() domain.BackoffSnapshot
}

type PriceProxyConfig struct {
	CacheTTL     time.Duration
	PreCallDelay time.Duration
	MaxBackoff   time.Duration
	JitterSpan   time.Duration
}

func DefaultPriceProxyConfig() PriceProxyConfig {
	return PriceProxyConfig{
		CacheTTL:     60 * time.Second,
		PreCallDelay: 100 * time.Millisecond,
		MaxBackoff:   300 * time.Second,
		JitterSpan:   10 * time.Second,
	}
}

type DefaultPriceProxy struct {
	provider domain.PriceProvider
	fallback *fallback.Table
	cache    *QuoteCache
	backoff  *RateLimitBackoff
	config   PriceProxyConfig

	metrics *metrics.ProxyMetrics
	sink    domain.QuoteEventSink
	logger  *slog.Logger

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
	jitter func() float64
}

type PriceProxyOption func(*DefaultPriceProxy)

func WithClock(now func() time.Time) PriceProxyOption {
	return func(p *DefaultPriceProxy) { p.now = now }
}

func WithSleep(sleep func(ctx context.Context, d time.Duration)) PriceProxyOption {
	return func(p *DefaultPriceProxy) { p.sleep = sleep }
}

// WithJitter replaces the [0,1) jitter source of the backoff window.
func WithJitter(jitter func() float64) PriceProxyOption {
	return func(p *DefaultPriceProxy) { p.jitter = jitter }
}

func WithProxyMetrics(m *metrics.ProxyMetrics) PriceProxyOption {
	return func(p *DefaultPriceProxy) { p.metrics = m }
}

func WithQuoteEventSink(sink domain.QuoteEventSink) PriceProxyOption {
	return func(p *DefaultPriceProxy) { p.sink = sink }
}

func WithProxyLogger(logger *slog.Logger) PriceProxyOption {
	return func(p *DefaultPriceProxy) { p.logger = logger }
}

func NewDefaultPriceProxy(provider domain.PriceProvider, config PriceProxyConfig, opts ...PriceProxyOption) *DefaultPriceProxy {
	p := &DefaultPriceProxy{
		provider: provider,
		fallback: fallback.NewTable(),
		cache:    NewQuoteCache(config.CacheTTL),
		config:   config,
		logger:   slog.Default(),
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.backoff = NewRateLimitBackoff(config.MaxBackoff, config.JitterSpan, p.jitter)
	return p
}

func (p *DefaultPriceProxy) Rates(ctx context.Context, from, to string) (quote domain.Quote, source domain.QuoteSource) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Unexpected error in price proxy", "panic", r)
			quote, source = p.fallback.Quote(fallback.PanicIDs), domain.SourceFallback
			p.metrics.RecordQuoteServed(string(source))
		}
	}()

	query := domain.NewPriceQuery(from, to)
	quote, source = p.resolve(ctx, query)

	p.metrics.RecordQuoteServed(string(source))
	if p.sink != nil {
		p.sink.QuoteServed(domain.QuoteEvent{
			CacheKey: query.CacheKey(),
			IDs:      query.IDs(),
			Source:   source,
			Prices:   quote.Clone(),
			ServedAt: p.now(),
		})
	}
	return quote, source
}

func (p *DefaultPriceProxy) Backoff() domain.BackoffSnapshot {
	return p.backoff.Snapshot(p.now())
}

func (p *DefaultPriceProxy) resolve(ctx context.Context, query domain.PriceQuery) (domain.Quote, domain.QuoteSource) {
	key := query.CacheKey()
	ids := query.IDs()

	cached, hasCached := p.cache.Get(key)
	if hasCached && p.cache.Fresh(cached, p.now()) {
		p.logger.Debug("Returning cached exchange rates", "key", key)
		return cached.Quote.Clone(), domain.SourceCache
	}

	if remaining := p.backoff.Remaining(p.now()); remaining > 0 {
		p.logger.Info("Still in backoff period, serving degraded rates",
			"key", key,
			"remaining", remaining.Round(time.Second).String())
		return p.degraded(cached, hasCached, ids)
	}

	// Smooths bursts of cache misses hitting the upstream back to back.
	p.sleep(ctx, p.config.PreCallDelay)

	start := time.Now()
	fetched, err := p.provider.SimplePrices(ctx, ids)
	elapsed := time.Since(start)

	if err == nil {
		p.backoff.Reset()
		p.metrics.RecordUpstreamCall(simplePriceEndpoint, metrics.OutcomeSuccess, elapsed)
		p.metrics.SetBackoff(0, 0)
		p.cache.Set(key, fetched, p.now())
		return fetched.Clone(), domain.SourceLive
	}

	switch {
	case errors.Is(err, domain.ErrUpstreamTimeout):
		p.metrics.RecordUpstreamCall(simplePriceEndpoint, metrics.OutcomeTimeout, elapsed)
		p.logger.Warn("Upstream request timed out, using fallback rates", "key", key, "error", err)

	case errors.Is(err, domain.ErrUpstreamRateLimited):
		failures, window := p.backoff.RecordRateLimit(p.now())
		p.metrics.RecordUpstreamCall(simplePriceEndpoint, metrics.OutcomeRateLimited, elapsed)
		p.metrics.SetBackoff(failures, window)
		p.logger.Warn("Rate limited by upstream, backing off",
			"key", key,
			"consecutive_failures", failures,
			"backoff", window.Round(100*time.Millisecond).String())

	default:
		failures := p.backoff.RecordFailure()
		p.metrics.RecordUpstreamCall(simplePriceEndpoint, metrics.OutcomeError, elapsed)
		p.metrics.SetBackoff(failures, 0)
		p.logger.Error("Error fetching exchange rates", "key", key, "consecutive_failures", failures, "error", err)
	}

	return p.degraded(cached, hasCached, ids)
}

// degraded prefers a stale cache entry over the static table.
func (p *DefaultPriceProxy) degraded(cached CachedQuote, hasCached bool, ids []string) (domain.Quote, domain.QuoteSource) {
	if hasCached {
		return cached.Quote.Clone(), domain.SourceStale
	}
	return p.fallback.Quote(ids), domain.SourceFallback
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
