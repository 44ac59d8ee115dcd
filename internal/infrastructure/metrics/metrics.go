package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "price_proxy"

// Upstream call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeTimeout     = "timeout"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

// ProxyMetrics holds every collector the service exports.
// A nil *ProxyMetrics is valid and records nothing.
type ProxyMetrics struct {
	// Answers of the price proxy by source (live/cache/stale/fallback)
	QuotesServedTotal *prometheus.CounterVec

	// Upstream price index
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// Backoff state
	BackoffFailures      prometheus.Gauge
	BackoffWindowSeconds prometheus.Gauge

	// Market routes served from static data
	MarketFallbackTotal *prometheus.CounterVec

	// Quote events
	QuoteEventsDroppedTotal prometheus.Counter
	QuoteEventSinkTotal     *prometheus.CounterVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

func NewProxyMetrics(reg prometheus.Registerer) *ProxyMetrics {
	factory := promauto.With(reg)
	return &ProxyMetrics{
		QuotesServedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quotes_served_total",
				Help:      "Price quotes served, by source",
			},
			[]string{"source"},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Calls to the upstream price index, by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),

		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Latency of upstream price index calls",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 9), // 50ms .. 12.8s
			},
			[]string{"endpoint"},
		),

		BackoffFailures: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "backoff_consecutive_failures",
				Help:      "Consecutive upstream failures since the last successful fetch",
			},
		),

		BackoffWindowSeconds: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "backoff_window_seconds",
				Help:      "Length of the most recently opened backoff window, 0 after a successful fetch",
			},
		),

		MarketFallbackTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "market_fallback_total",
				Help:      "Market answers served from static data, by route",
			},
			[]string{"route"},
		),

		QuoteEventsDroppedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quote_events_dropped_total",
				Help:      "Quote events dropped because the recorder queue was full",
			},
		),

		QuoteEventSinkTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quote_event_sink_total",
				Help:      "Quote events handed to a sink, by sink and outcome",
			},
			[]string{"sink", "outcome"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests, by route, method and status",
			},
			[]string{"route", "method", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency, by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// RecordQuoteServed counts one proxy answer
func (m *ProxyMetrics) RecordQuoteServed(source string) {
	if m == nil {
		return
	}
	m.QuotesServedTotal.WithLabelValues(source).Inc()
}

// RecordUpstreamCall counts one upstream call and observes its latency
func (m *ProxyMetrics) RecordUpstreamCall(endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// SetBackoff publishes the failure counter and the last opened window
func (m *ProxyMetrics) SetBackoff(failures int, window time.Duration) {
	if m == nil {
		return
	}
	m.BackoffFailures.Set(float64(failures))
	m.BackoffWindowSeconds.Set(window.Seconds())
}

func (m *ProxyMetrics) RecordMarketFallback(route string) {
	if m == nil {
		return
	}
	m.MarketFallbackTotal.WithLabelValues(route).Inc()
}

func (m *ProxyMetrics) RecordEventDropped() {
	if m == nil {
		return
	}
	m.QuoteEventsDroppedTotal.Inc()
}

func (m *ProxyMetrics) RecordEventSink(sink string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.QuoteEventSinkTotal.WithLabelValues(sink, outcome).Inc()
}

// RecordHTTPRequest counts a finished HTTP request
func (m *ProxyMetrics) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
