package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *CoinGeckoProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewCoinGeckoProvider(CoinGeckoConfig{
		BaseURL:   server.URL,
		UserAgent: "test-agent/1.0",
		Timeout:   timeout,
	})
}

func TestCoinGeckoProvider_SimplePrices(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.Equal(t, "no-cache", r.Header.Get("Pragma"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"ethereum":{"usd":3500},"bitcoin":{"usd":65000}}`))
	}, time.Second)

	quote, err := provider.SimplePrices(context.Background(), []string{"bitcoin", "ethereum"})
	require.NoError(t, err)
	assert.Equal(t, domain.Quote{
		"bitcoin":  {USD: 65000},
		"ethereum": {USD: 3500},
	}, quote)
}

func TestCoinGeckoProvider_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want: domain.ErrUpstreamRateLimited,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: domain.ErrUpstreamUnavailable,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			},
			want: domain.ErrMalformedResponse,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(500 * time.Millisecond):
				case <-r.Context().Done():
				}
			},
			want: domain.ErrUpstreamTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, tt.handler, 50*time.Millisecond)
			_, err := provider.SimplePrices(context.Background(), []string{"bitcoin"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCoinGeckoProvider_RateLimitedCarriesStatus(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, time.Second)

	_, err := provider.SimplePrices(context.Background(), []string{"bitcoin"})
	var upstreamErr *domain.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusTooManyRequests, upstreamErr.StatusCode)
	assert.Equal(t, simplePriceEndpoint, upstreamErr.Endpoint)
}

func TestCoinGeckoProvider_Markets(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "solana", r.URL.Query().Get("ids"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))
		w.Write([]byte(`[{"id":"solana","symbol":"sol","name":"Solana","current_price":151.5,"max_supply":null}]`))
	}, time.Second)

	details, err := provider.Markets(context.Background(), domain.MarketsParams{IDs: []string{"solana"}, PerPage: 1})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "sol", details[0].Symbol)
	assert.Equal(t, 151.5, details[0].CurrentPrice)
	assert.Nil(t, details[0].MaxSupply)
}

func TestCoinGeckoProvider_MarketsRejectsObject(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"nope"}`))
	}, time.Second)

	_, err := provider.Markets(context.Background(), domain.MarketsParams{})
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestCoinGeckoProvider_MarketChart(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/ethereum/market_chart", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))
		w.Write([]byte(`{"prices":[[1700000000000,3400.5],[1700086400000,3501]],"total_volumes":[]}`))
	}, time.Second)

	chart, err := provider.MarketChart(context.Background(), "ethereum", "7", "daily")
	require.NoError(t, err)
	assert.Equal(t, []domain.ChartPoint{{1700000000000, 3400.5}, {1700086400000, 3501}}, chart.Prices)
}

func TestCoinGeckoProvider_MarketChartEmpty(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"prices":[]}`))
	}, time.Second)

	_, err := provider.MarketChart(context.Background(), "ethereum", "7", "daily")
	assert.ErrorIs(t, err, domain.ErrEmptyResponse)
}
