package domain

import "context"

// PriceProvider fetches spot USD prices from the upstream price index.
type PriceProvider interface {
	SimplePrices(ctx context.Context, ids []string) (Quote, error)
}

// MarketProvider fetches market listings and history from the upstream price index.
type MarketProvider interface {
	Markets(ctx context.Context, params MarketsParams) ([]TokenDetail, error)
	MarketChart(ctx context.Context, id, days, interval string) (*Chart, error)
}
