// internal/infrastructure/exchange_providers/coingecko_provider.go
package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/tidwall/gjson"
)

const (
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	DefaultUserAgent    = "NeonSwap/1.0.0 (https://neonswap.vercel.app)"

	simplePriceEndpoint = "simple/price"
	marketsEndpoint     = "coins/markets"
	marketChartEndpoint = "coins/market_chart"
)

type CoinGeckoConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// CoinGeckoProvider talks to a CoinGecko-compatible price index.
type CoinGeckoProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
}

func NewCoinGeckoProvider(cfg CoinGeckoConfig) *CoinGeckoProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCoinGeckoURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &CoinGeckoProvider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
	}
}

func (p *CoinGeckoProvider) GetName() string {
	return "coingecko"
}

// SimplePrices queries /simple/price for the given ids in USD.
// Ids the index does not know are simply absent from the result.
func (p *CoinGeckoProvider) SimplePrices(ctx context.Context, ids []string) (domain.Quote, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")

	body, err := p.get(ctx, simplePriceEndpoint, fmt.Sprintf("%s/simple/price?%s", p.baseURL, query.Encode()))
	if err != nil {
		return nil, err
	}

	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse simple price response: %w: %v", domain.ErrMalformedResponse, err)
	}

	quote := make(domain.Quote, len(raw))
	for id, prices := range raw {
		usd, ok := prices["usd"]
		if !ok {
			continue
		}
		quote[id] = domain.USDPrice{USD: usd}
	}
	return quote, nil
}

func (p *CoinGeckoProvider) Markets(ctx context.Context, params domain.MarketsParams) ([]domain.TokenDetail, error) {
	perPage := params.PerPage
	if perPage <= 0 {
		perPage = 100
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}

	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("order", "market_cap_desc")
	query.Set("per_page", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	query.Set("sparkline", "false")
	if len(params.IDs) > 0 {
		query.Set("ids", strings.Join(params.IDs, ","))
		query.Set("price_change_percentage", "24h")
	} else {
		query.Set("locale", "en")
	}

	body, err := p.get(ctx, marketsEndpoint, fmt.Sprintf("%s/coins/markets?%s", p.baseURL, query.Encode()))
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsArray() {
		return nil, fmt.Errorf("markets: %w", domain.ErrMalformedResponse)
	}

	var details []domain.TokenDetail
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("failed to parse markets response: %w: %v", domain.ErrMalformedResponse, err)
	}
	return details, nil
}

func (p *CoinGeckoProvider) MarketChart(ctx context.Context, id, days, interval string) (*domain.Chart, error) {
	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("days", days)
	query.Set("interval", interval)

	rawURL := fmt.Sprintf("%s/coins/%s/market_chart?%s", p.baseURL, url.PathEscape(id), query.Encode())
	body, err := p.get(ctx, marketChartEndpoint, rawURL)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("market chart: %w", domain.ErrMalformedResponse)
	}

	prices := gjson.GetBytes(body, "prices")
	if !prices.IsArray() || len(prices.Array()) == 0 {
		return nil, fmt.Errorf("market chart: %w", domain.ErrEmptyResponse)
	}

	chart := &domain.Chart{Prices: make([]domain.ChartPoint, 0, len(prices.Array()))}
	prices.ForEach(func(_, point gjson.Result) bool {
		pair := point.Array()
		if len(pair) < 2 {
			return true
		}
		chart.Prices = append(chart.Prices, domain.ChartPoint{pair[0].Float(), pair[1].Float()})
		return true
	})
	if len(chart.Prices) == 0 {
		return nil, fmt.Errorf("market chart: %w", domain.ErrEmptyResponse)
	}
	return chart, nil
}

func (p *CoinGeckoProvider) get(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &domain.UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: domain.ErrUpstreamRateLimited}
	case resp.StatusCode != http.StatusOK:
		return nil, &domain.UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: domain.ErrUpstreamUnavailable}
	}
	return body, nil
}

func classifyTransportError(endpoint string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", endpoint, domain.ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", endpoint, domain.ErrUpstreamUnavailable, err)
}
