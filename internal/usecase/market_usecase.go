package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/fallback"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	RouteTokens     = "tokens"
	RouteTokenData  = "token-data"
	RouteTokenChart = "token-chart"

	DefaultChartDays     = 7
	DefaultChartInterval = "daily"

	tokenListSize = 100

	marketsEndpoint     = "coins/markets"
	marketChartEndpoint = "coins/market_chart"
)

type MarketUsecase interface {
	Tokens(ctx context.Context) ([]domain.TokenMarket, domain.QuoteSource)
	TokenData(ctx context.Context, id string) (domain.TokenDetail, domain.QuoteSource, error)
	TokenChart(ctx context.Context, id, days, interval string) (*domain.Chart, domain.QuoteSource, error)
	WarmUp(ctx context.Context) error
}

type DefaultMarketUsecase struct {
	provider domain.MarketProvider
	cache    *marketCache
	flights  singleflight.Group

	metrics *metrics.ProxyMetrics
	logger  *slog.Logger
	now     func() time.Time
}

type MarketOption func(*DefaultMarketUsecase)

func WithMarketClock(now func() time.Time) MarketOption {
	return func(m *DefaultMarketUsecase) { m.now = now }
}

func WithMarketMetrics(pm *metrics.ProxyMetrics) MarketOption {
	return func(m *DefaultMarketUsecase) { m.metrics = pm }
}

func WithMarketLogger(logger *slog.Logger) MarketOption {
	return func(m *DefaultMarketUsecase) { m.logger = logger }
}

func NewDefaultMarketUsecase(provider domain.MarketProvider, ttl time.Duration, opts ...MarketOption) *DefaultMarketUsecase {
	m := &DefaultMarketUsecase{
		provider: provider,
		cache:    newMarketCache(ttl),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *DefaultMarketUsecase) Tokens(ctx context.Context) ([]domain.TokenMarket, domain.QuoteSource) {
	value, source, err := m.load(ctx, "tokens", func(ctx context.Context) (any, error) {
		return m.fetchTokens(ctx)
	})
	if err != nil {
		m.logger.Error("Error fetching tokens, serving fallback list", "error", err)
		m.metrics.RecordMarketFallback(RouteTokens)
		return fallback.Tokens(), domain.SourceFallback
	}
	list := value.([]domain.TokenMarket)
	return append([]domain.TokenMarket(nil), list...), source
}

// WarmUp refreshes the token list regardless of cache age.
func (m *DefaultMarketUsecase) WarmUp(ctx context.Context) error {
	list, err := m.fetchTokens(ctx)
	if err != nil {
		return err
	}
	m.cache.set("tokens", list, m.now())
	return nil
}

func (m *DefaultMarketUsecase) fetchTokens(ctx context.Context) ([]domain.TokenMarket, error) {
	start := time.Now()
	rows, err := m.provider.Markets(ctx, domain.MarketsParams{PerPage: tokenListSize, Page: 1})
	m.metrics.RecordUpstreamCall(marketsEndpoint, upstreamOutcome(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	list := make([]domain.TokenMarket, 0, len(rows))
	for _, row := range rows {
		list = append(list, row.Market())
	}
	return list, nil
}

func (m *DefaultMarketUsecase) TokenData(ctx context.Context, id string) (domain.TokenDetail, domain.QuoteSource, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return domain.TokenDetail{}, "", domain.ErrTokenIDRequired
	}

	value, source, err := m.load(ctx, "detail:"+id, func(ctx context.Context) (any, error) {
		start := time.Now()
		rows, err := m.provider.Markets(ctx, domain.MarketsParams{IDs: []string{id}, PerPage: 1, Page: 1})
		m.metrics.RecordUpstreamCall(marketsEndpoint, upstreamOutcome(err), time.Since(start))
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("%s %s: %w", marketsEndpoint, id, domain.ErrEmptyResponse)
		}
		return rows[0], nil
	})
	if err != nil {
		m.logger.Error("Error fetching token data, serving fallback", "id", id, "error", err)
		m.metrics.RecordMarketFallback(RouteTokenData)
		return fallback.TokenDetail(id), domain.SourceFallback, nil
	}
	return value.(domain.TokenDetail), source, nil
}

func (m *DefaultMarketUsecase) TokenChart(ctx context.Context, id, days, interval string) (*domain.Chart, domain.QuoteSource, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, "", domain.ErrTokenIDRequired
	}
	numDays := ParseChartDays(days)
	interval = strings.TrimSpace(interval)
	if interval == "" {
		interval = DefaultChartInterval
	}

	key := fmt.Sprintf("chart:%s:%d:%s", id, numDays, interval)
	value, source, err := m.load(ctx, key, func(ctx context.Context) (any, error) {
		start := time.Now()
		chart, err := m.provider.MarketChart(ctx, id, strconv.Itoa(numDays), interval)
		m.metrics.RecordUpstreamCall(marketChartEndpoint, upstreamOutcome(err), time.Since(start))
		if err != nil {
			return nil, err
		}
		return chart, nil
	})
	if err != nil {
		m.logger.Error("Error fetching chart data, generating fallback series", "id", id, "days", numDays, "error", err)
		m.metrics.RecordMarketFallback(RouteTokenChart)
		return fallback.Chart(id, numDays, m.now()), domain.SourceFallback, nil
	}

	chart := value.(*domain.Chart)
	return &domain.Chart{Prices: append([]domain.ChartPoint(nil), chart.Prices...)}, source, nil
}

// ParseChartDays accepts a positive day count and falls back to 7 otherwise.
// Counts above fallback.MaxChartDays are clamped.
func ParseChartDays(days string) int {
	n, err := strconv.Atoi(strings.TrimSpace(days))
	if err != nil || n <= 0 {
		return DefaultChartDays
	}
	return min(n, fallback.MaxChartDays)
}

// load serves key from the cache or runs fetch once for all concurrent
// callers missing the same key. Only successful answers are cached. The
// shared fetch outlives the caller that started it.
func (m *DefaultMarketUsecase) load(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, domain.QuoteSource, error) {
	if value, ok := m.cache.get(key, m.now()); ok {
		return value, domain.SourceCache, nil
	}

	value, err, _ := m.flights.Do(key, func() (any, error) {
		value, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		m.cache.set(key, value, m.now())
		return value, nil
	})
	if err != nil {
		return nil, "", err
	}
	return value, domain.SourceLive, nil
}

func upstreamOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, domain.ErrUpstreamRateLimited):
		return metrics.OutcomeRateLimited
	default:
		return metrics.OutcomeError
	}
}

type marketEntry struct {
	value      any
	capturedAt time.Time
}

type marketCache struct {
	entries map[string]marketEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

func newMarketCache(ttl time.Duration) *marketCache {
	return &marketCache{
		entries: make(map[string]marketEntry),
		ttl:     ttl,
	}
}

func (c *marketCache) get(key string, now time.Time) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || now.Sub(entry.capturedAt) >= c.ttl {
		return nil, false
	}
	return entry.value, true
}

func (c *marketCache) set(key string, value any, capturedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = marketEntry{value: value, capturedAt: capturedAt}
}
