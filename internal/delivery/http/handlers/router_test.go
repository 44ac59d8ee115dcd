package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/shvark-price-proxy/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-price-proxy/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProxy struct {
	quote   domain.Quote
	source  domain.QuoteSource
	backoff domain.BackoffSnapshot
	asked   []string
	ctxErr  error
}

func (s *stubProxy) Rates(ctx context.Context, from, to string) (domain.Quote, domain.QuoteSource) {
	s.asked = []string{from, to}
	s.ctxErr = ctx.Err()
	return s.quote, s.source
}

func (s *stubProxy) Backoff() domain.BackoffSnapshot { return s.backoff }

type failingPrices struct{}

func (failingPrices) SimplePrices(context.Context, []string) (domain.Quote, error) {
	return nil, &domain.UpstreamError{Endpoint: "simple/price", StatusCode: 429, Err: domain.ErrUpstreamRateLimited}
}

type failingMarkets struct{}

func (failingMarkets) Markets(context.Context, domain.MarketsParams) ([]domain.TokenDetail, error) {
	return nil, domain.ErrUpstreamUnavailable
}

func (failingMarkets) MarketChart(context.Context, string, string, string) (*domain.Chart, error) {
	return nil, domain.ErrUpstreamUnavailable
}

type panickingMarket struct{ usecase.MarketUsecase }

func (panickingMarket) Tokens(context.Context) ([]domain.TokenMarket, domain.QuoteSource) {
	panic("market exploded")
}

type stubHistory struct {
	events []domain.QuoteEvent
	limit  int
}

func (s *stubHistory) Recent(_ context.Context, limit int) ([]domain.QuoteEvent, error) {
	s.limit = limit
	return s.events, nil
}

type testServer struct {
	handler  http.Handler
	proxy    usecase.PriceProxy
	registry *prometheus.Registry
}

func newTestServer(t *testing.T, mutate func(*RouterDeps)) *testServer {
	t.Helper()
	registry := prometheus.NewRegistry()
	m := metrics.NewProxyMetrics(registry)

	proxy := usecase.NewDefaultPriceProxy(failingPrices{}, usecase.DefaultPriceProxyConfig(),
		usecase.WithSleep(func(context.Context, time.Duration) {}),
		usecase.WithProxyMetrics(m),
	)
	deps := RouterDeps{
		Proxy:    proxy,
		Market:   usecase.NewDefaultMarketUsecase(failingMarkets{}, time.Minute, usecase.WithMarketMetrics(m)),
		Swap:     usecase.NewDefaultSwapUsecase(proxy),
		Metrics:  m,
		Gatherer: registry,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return &testServer{handler: NewRouter(deps), proxy: deps.Proxy, registry: registry}
}

func (s *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRate_AlwaysOK(t *testing.T) {
	stub := &stubProxy{
		quote:  domain.Quote{"ethereum": {USD: 3500}, "bitcoin": {USD: 65000}},
		source: domain.SourceCache,
	}
	srv := newTestServer(t, func(d *RouterDeps) { d.Proxy = stub })

	for _, path := range []string{"/rate", "/api/exchange-rate"} {
		rec := srv.get(t, path+"?from=ethereum&to=bitcoin")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "cache", rec.Header().Get(SourceHeader))
		assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		assert.JSONEq(t, `{"ethereum":{"usd":3500},"bitcoin":{"usd":65000}}`, rec.Body.String())
		assert.Equal(t, []string{"ethereum", "bitcoin"}, stub.asked)
	}
}

func TestRate_CancelledClientDoesNotCancelLookup(t *testing.T) {
	stub := &stubProxy{quote: domain.Quote{}, source: domain.SourceLive}
	srv := newTestServer(t, func(d *RouterDeps) { d.Proxy = stub })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/rate", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, stub.ctxErr)
}

func TestRate_FallbackWhenUpstreamRateLimited(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/rate?from=ripple&to=mystery-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback", rec.Header().Get(SourceHeader))
	assert.JSONEq(t, `{"ripple":{"usd":0.6},"mystery-token":{"usd":1}}`, rec.Body.String())

	rec = srv.get(t, "/rate")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tether":{"usd":1},"bitcoin":{"usd":65000}}`, rec.Body.String())
}

func TestMarketRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("tokens fallback", func(t *testing.T) {
		rec := srv.get(t, "/api/tokens")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "fallback", rec.Header().Get(SourceHeader))
		assert.Len(t, decode[[]domain.TokenMarket](t, rec), 8)
	})

	t.Run("token data requires id", func(t *testing.T) {
		rec := srv.get(t, "/api/token-data")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Token ID is required"}`, rec.Body.String())
	})

	t.Run("token data fallback", func(t *testing.T) {
		rec := srv.get(t, "/api/token-data?id=ethereum")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ethereum", decode[domain.TokenDetail](t, rec).ID)
	})

	t.Run("chart requires id", func(t *testing.T) {
		rec := srv.get(t, "/api/token-chart?days=7")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Token ID is required"}`, rec.Body.String())
	})

	t.Run("chart fallback", func(t *testing.T) {
		rec := srv.get(t, "/api/token-chart?id=solana&days=14")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[domain.Chart](t, rec).Prices, 14)
	})
}

func TestSwapQuoteRoute(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/api/swap/quote?from=ethereum&to=tether&amount=2")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "7000", body["from_value_usd"])
	assert.Equal(t, "7", body["fee_usd"])
	assert.Equal(t, "6993", body["to_amount"])
	assert.Equal(t, false, body["below_minimum"])
	assert.Equal(t, "fallback", body["source"])

	rec = srv.get(t, "/api/swap/quote?from=ethereum&to=tether&amount=lots")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "amount")
}

func TestMarketRoutesAreThrottled(t *testing.T) {
	srv := newTestServer(t, func(d *RouterDeps) {
		d.Limiter = middleware.NewRateLimiter(0.001, 1, slog.Default())
	})

	first := srv.get(t, "/api/tokens")
	second := srv.get(t, "/api/tokens")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// the price proxy is never throttled
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, srv.get(t, "/rate").Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.get(t, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.get(t, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusReady, decode[map[string]any](t, rec)["status"])

	srv.get(t, "/rate?from=solana&to=tether")
	rec = srv.get(t, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, StatusDegraded, body["status"])
	backoff := body["backoff"].(map[string]any)
	assert.Equal(t, 1.0, backoff["consecutive_failures"])
	assert.Equal(t, true, backoff["active"])
}

func TestRecoveryMiddleware(t *testing.T) {
	srv := newTestServer(t, func(d *RouterDeps) { d.Market = panickingMarket{} })

	rec := srv.get(t, "/api/tokens")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestJournalRoute(t *testing.T) {
	history := &stubHistory{events: []domain.QuoteEvent{{ID: "evt-1", CacheKey: "bitcoin", Source: domain.SourceLive}}}
	srv := newTestServer(t, func(d *RouterDeps) { d.History = history })

	rec := srv.get(t, "/api/quotes/recent?limit=5000")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500, history.limit)
	assert.Equal(t, 1.0, decode[map[string]any](t, rec)["count"])

	rec = srv.get(t, "/api/quotes/recent?limit=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusNotFound, newTestServer(t, nil).get(t, "/api/quotes/recent").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.get(t, "/rate?from=bitcoin&to=tether")

	rec := srv.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `price_proxy_http_requests_total{method="GET",route="/rate",status="200"} 1`), body)
	assert.Contains(t, body, `price_proxy_quotes_served_total{source="fallback"} 1`)
}
