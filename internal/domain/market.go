package domain

// TokenMarket is the trimmed listing entry served by /api/tokens.
type TokenMarket struct {
	ID                       string  `json:"id"`
	Symbol                   string  `json:"symbol"`
	Name                     string  `json:"name"`
	Image                    string  `json:"image"`
	CurrentPrice             float64 `json:"current_price"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	MarketCap                float64 `json:"market_cap"`
}

// TokenDetail is a single coins/markets row.
type TokenDetail struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	MarketCap                float64  `json:"market_cap"`
	FullyDilutedValuation    *float64 `json:"fully_diluted_valuation"`
	TotalVolume              float64  `json:"total_volume"`
	CirculatingSupply        float64  `json:"circulating_supply"`
	TotalSupply              *float64 `json:"total_supply"`
	MaxSupply                *float64 `json:"max_supply"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
}

func (d TokenDetail) Market() TokenMarket {
	return TokenMarket{
		ID:                       d.ID,
		Symbol:                   d.Symbol,
		Name:                     d.Name,
		Image:                    d.Image,
		CurrentPrice:             d.CurrentPrice,
		PriceChangePercentage24h: d.PriceChangePercentage24h,
		MarketCap:                d.MarketCap,
	}
}

// ChartPoint is [unix millis, usd price].
type ChartPoint [2]float64

type Chart struct {
	Prices []ChartPoint `json:"prices"`
}

type MarketsParams struct {
	IDs     []string
	PerPage int
	Page    int
}
