package domain

import "github.com/shopspring/decimal"

var (
	PlatformFeeRate  = decimal.RequireFromString("0.001")
	MinimumUSDAmount = decimal.NewFromInt(10)
)

type SwapQuote struct {
	From              string          `json:"from"`
	To                string          `json:"to"`
	FromAmount        decimal.Decimal `json:"from_amount"`
	FromRate          decimal.Decimal `json:"from_rate_usd"`
	ToRate            decimal.Decimal `json:"to_rate_usd"`
	FromValueUSD      decimal.Decimal `json:"from_value_usd"`
	FeeUSD            decimal.Decimal `json:"fee_usd"`
	ToAmount          decimal.Decimal `json:"to_amount"`
	MinimumFromAmount decimal.Decimal `json:"minimum_from_amount"`
	BelowMinimum      bool            `json:"below_minimum"`
	Source            QuoteSource     `json:"source"`
}
