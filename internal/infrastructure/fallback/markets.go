package fallback

import (
	"math/rand"
	"time"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
)

const (
	chartVolatility = 0.03
	chartDrift      = 0.48
	chartStep       = 24 * time.Hour
	defaultBaseUSD  = 65000

	// MaxChartDays bounds generated and requested chart lengths.
	MaxChartDays = 365
)

var tokens = []domain.TokenMarket{
	{ID: "ethereum", Symbol: "eth", Name: "Ethereum", Image: "https://assets.coingecko.com/coins/images/279/small/ethereum.png", CurrentPrice: 2500, PriceChangePercentage24h: 2.5, MarketCap: 300000000000},
	{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Image: "https://assets.coingecko.com/coins/images/1/small/bitcoin.png", CurrentPrice: 45000, PriceChangePercentage24h: 1.2, MarketCap: 800000000000},
	{ID: "tether", Symbol: "usdt", Name: "Tether", Image: "https://assets.coingecko.com/coins/images/325/small/Tether.png", CurrentPrice: 1.0, PriceChangePercentage24h: 0.01, MarketCap: 90000000000},
	{ID: "usd-coin", Symbol: "usdc", Name: "USD Coin", Image: "https://assets.coingecko.com/coins/images/6319/small/USD_Coin_icon.png", CurrentPrice: 1.0, PriceChangePercentage24h: 0.02, MarketCap: 25000000000},
	{ID: "binancecoin", Symbol: "bnb", Name: "BNB", Image: "https://assets.coingecko.com/coins/images/825/small/bnb-icon2_2x.png", CurrentPrice: 320, PriceChangePercentage24h: 3.1, MarketCap: 50000000000},
	{ID: "cardano", Symbol: "ada", Name: "Cardano", Image: "https://assets.coingecko.com/coins/images/975/small/cardano.png", CurrentPrice: 0.45, PriceChangePercentage24h: -1.2, MarketCap: 15000000000},
	{ID: "solana", Symbol: "sol", Name: "Solana", Image: "https://assets.coingecko.com/coins/images/4128/small/solana.png", CurrentPrice: 110, PriceChangePercentage24h: 5.3, MarketCap: 45000000000},
	{ID: "ripple", Symbol: "xrp", Name: "XRP", Image: "https://assets.coingecko.com/coins/images/44/small/xrp-symbol-white-128.png", CurrentPrice: 0.55, PriceChangePercentage24h: 2.1, MarketCap: 30000000000},
}

func ptr(v float64) *float64 { return &v }

var details = map[string]domain.TokenDetail{
	"bitcoin": {
		ID: "bitcoin", Symbol: "btc", Name: "Bitcoin",
		Image:                    "https://assets.coingecko.com/coins/images/1/large/bitcoin.png",
		CurrentPrice:             65000,
		MarketCap:                1270000000000,
		FullyDilutedValuation:    ptr(1365000000000),
		TotalVolume:              28000000000,
		CirculatingSupply:        19500000,
		TotalSupply:              ptr(21000000),
		MaxSupply:                ptr(21000000),
		PriceChangePercentage24h: 2.5,
	},
	"ethereum": {
		ID: "ethereum", Symbol: "eth", Name: "Ethereum",
		Image:                    "https://assets.coingecko.com/coins/images/279/large/ethereum.png",
		CurrentPrice:             3500,
		MarketCap:                420000000000,
		FullyDilutedValuation:    ptr(420000000000),
		TotalVolume:              15000000000,
		CirculatingSupply:        120000000,
		TotalSupply:              ptr(120000000),
		PriceChangePercentage24h: 1.8,
	},
	"solana": {
		ID: "solana", Symbol: "sol", Name: "Solana",
		Image:                    "https://assets.coingecko.com/coins/images/4128/large/solana.png",
		CurrentPrice:             150,
		MarketCap:                65000000000,
		FullyDilutedValuation:    ptr(85000000000),
		TotalVolume:              2500000000,
		CirculatingSupply:        433000000,
		TotalSupply:              ptr(567000000),
		PriceChangePercentage24h: 3.2,
	},
	"binancecoin": {
		ID: "binancecoin", Symbol: "bnb", Name: "BNB",
		Image:                    "https://assets.coingecko.com/coins/images/825/large/bnb-icon2_2x.png",
		CurrentPrice:             600,
		MarketCap:                90000000000,
		FullyDilutedValuation:    ptr(90000000000),
		TotalVolume:              1800000000,
		CirculatingSupply:        150000000,
		TotalSupply:              ptr(150000000),
		MaxSupply:                ptr(200000000),
		PriceChangePercentage24h: -0.5,
	},
	"ripple": {
		ID: "ripple", Symbol: "xrp", Name: "XRP",
		Image:                    "https://assets.coingecko.com/coins/images/44/large/xrp-symbol-white-128.png",
		CurrentPrice:             0.6,
		MarketCap:                32000000000,
		FullyDilutedValuation:    ptr(60000000000),
		TotalVolume:              1200000000,
		CirculatingSupply:        53000000000,
		TotalSupply:              ptr(100000000000),
		MaxSupply:                ptr(100000000000),
		PriceChangePercentage24h: 1.2,
	},
}

var chartBase = map[string]float64{
	"bitcoin":     65000,
	"ethereum":    3500,
	"solana":      150,
	"binancecoin": 600,
	"ripple":      0.6,
}

// Tokens returns a copy of the static token listing.
func Tokens() []domain.TokenMarket {
	out := make([]domain.TokenMarket, len(tokens))
	copy(out, tokens)
	return out
}

// TokenDetail returns the static detail for id, or bitcoin's when id is unknown.
func TokenDetail(id string) domain.TokenDetail {
	if d, ok := details[id]; ok {
		return d
	}
	return details["bitcoin"]
}

// Chart generates a daily random walk ending at now.
func Chart(id string, days int, now time.Time) *domain.Chart {
	base, ok := chartBase[id]
	if !ok {
		base = defaultBaseUSD
	}
	days = max(0, min(days, MaxChartDays))

	chart := &domain.Chart{Prices: make([]domain.ChartPoint, 0, days)}
	price := base
	for i := 0; i < days; i++ {
		ts := now.Add(-time.Duration(days-i) * chartStep)
		price += (rand.Float64() - chartDrift) * chartVolatility * price
		chart.Prices = append(chart.Prices, domain.ChartPoint{float64(ts.UnixMilli()), price})
	}
	return chart
}
