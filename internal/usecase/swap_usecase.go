package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/shopspring/decimal"
)

type SwapUsecase interface {
	Quote(ctx context.Context, from, to, amount string) (*domain.SwapQuote, error)
}

type DefaultSwapUsecase struct {
	prices PriceProxy
}

func NewDefaultSwapUsecase(prices PriceProxy) *DefaultSwapUsecase {
	return &DefaultSwapUsecase{prices: prices}
}

// Quote converts amount of from into to at current proxy rates, net of the
// platform fee. An amount below the USD minimum is quoted but flagged.
func (uc *DefaultSwapUsecase) Quote(ctx context.Context, from, to, amount string) (*domain.SwapQuote, error) {
	fromAmount, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, amount)
	}
	if fromAmount.IsNegative() {
		return nil, fmt.Errorf("%w: must not be negative", domain.ErrInvalidAmount)
	}

	query := domain.NewPriceQuery(from, to)
	rates, source := uc.prices.Rates(ctx, query.From, query.To)

	fromRate := decimal.NewFromFloat(rates[query.From].USD)
	toRate := decimal.NewFromFloat(rates[query.To].USD)
	if !fromRate.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrZeroRate, query.From)
	}
	if !toRate.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrZeroRate, query.To)
	}

	fromValue := fromAmount.Mul(fromRate)
	fee := fromValue.Mul(domain.PlatformFeeRate)
	net := decimal.Max(decimal.Zero, fromValue.Sub(fee))
	minimum := domain.MinimumUSDAmount.Div(fromRate)

	return &domain.SwapQuote{
		From:              query.From,
		To:                query.To,
		FromAmount:        fromAmount,
		FromRate:          fromRate,
		ToRate:            toRate,
		FromValueUSD:      fromValue,
		FeeUSD:            fee,
		ToAmount:          net.Div(toRate),
		MinimumFromAmount: minimum,
		BelowMinimum:      fromAmount.IsPositive() && fromAmount.LessThan(minimum),
		Source:            source,
	}, nil
}
