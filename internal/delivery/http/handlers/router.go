package handlers

import (
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-price-proxy/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-price-proxy/internal/usecase"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Proxy  usecase.PriceProxy
	Market usecase.MarketUsecase
	Swap   usecase.SwapUsecase
	// History is nil when the quote journal is disabled.
	History QuoteHistory

	Limiter  *middleware.RateLimiter
	Metrics  *metrics.ProxyMetrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

func NewRouter(deps RouterDeps) *mux.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()
	r.Use(middleware.Logging(logger), middleware.Metrics(deps.Metrics), middleware.Recovery(logger))

	price := NewPriceHandler(deps.Proxy)
	r.HandleFunc("/rate", price.GetRate).Methods(http.MethodGet)
	r.HandleFunc("/api/exchange-rate", price.GetRate).Methods(http.MethodGet)

	throttled := func(h http.HandlerFunc) http.Handler {
		if deps.Limiter == nil {
			return h
		}
		return deps.Limiter.Handler(h)
	}

	market := NewMarketHandler(deps.Market)
	r.Handle("/api/tokens", throttled(market.GetTokens)).Methods(http.MethodGet)
	r.Handle("/api/token-data", throttled(market.GetTokenData)).Methods(http.MethodGet)
	r.Handle("/api/token-chart", throttled(market.GetTokenChart)).Methods(http.MethodGet)

	swap := NewSwapHandler(deps.Swap)
	r.Handle("/api/swap/quote", throttled(swap.GetQuote)).Methods(http.MethodGet)

	if deps.History != nil {
		journal := NewJournalHandler(deps.History)
		r.Handle("/api/quotes/recent", throttled(journal.GetRecent)).Methods(http.MethodGet)
	}

	health := NewHealthHandler(deps.Proxy)
	r.HandleFunc("/health/live", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}
