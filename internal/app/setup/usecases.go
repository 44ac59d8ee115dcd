package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/LavaJover/shvark-price-proxy/internal/usecase"
)

type UseCases struct {
	PriceProxy *usecase.DefaultPriceProxy
	Market     *usecase.DefaultMarketUsecase
	Swap       *usecase.DefaultSwapUsecase
	Recorder   *usecase.QuoteRecorder
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	recorderConfig := usecase.QuoteRecorderConfig{
		QueueSize: deps.Config.KafkaService.QueueSize,
		Topic:     deps.Config.KafkaService.Topic,
		Metrics:   deps.Metrics,
		Logger:    deps.Logger,
	}
	// Typed nils must not leak into the interfaces.
	if deps.Publisher != nil {
		recorderConfig.Publisher = deps.Publisher
	}
	if deps.Journal != nil {
		recorderConfig.Journal = deps.Journal
	}
	recorder, err := usecase.NewQuoteRecorder(recorderConfig)
	if err != nil {
		return nil, fmt.Errorf("quote recorder: %w", err)
	}

	proxyOpts := []usecase.PriceProxyOption{
		usecase.WithProxyMetrics(deps.Metrics),
		usecase.WithProxyLogger(deps.Logger),
	}
	if recorder.Enabled() {
		proxyOpts = append(proxyOpts, usecase.WithQuoteEventSink(recorder))
	}
	priceProxy := usecase.NewDefaultPriceProxy(deps.Provider, proxyConfig(deps), proxyOpts...)

	market := usecase.NewDefaultMarketUsecase(deps.Provider, deps.Config.Market.CacheTTL,
		usecase.WithMarketMetrics(deps.Metrics),
		usecase.WithMarketLogger(deps.Logger),
	)

	return &UseCases{
		PriceProxy: priceProxy,
		Market:     market,
		Swap:       usecase.NewDefaultSwapUsecase(priceProxy),
		Recorder:   recorder,
	}, nil
}

func proxyConfig(deps *Dependencies) usecase.PriceProxyConfig {
	cfg := usecase.DefaultPriceProxyConfig()
	if ttl := deps.Config.Proxy.CacheTTL; ttl > 0 {
		cfg.CacheTTL = ttl
	}
	if delay := deps.Config.Upstream.PreCallDelay; delay > 0 {
		cfg.PreCallDelay = delay
	}
	if maxBackoff := deps.Config.Proxy.MaxBackoff; maxBackoff > 0 {
		cfg.MaxBackoff = maxBackoff
	}
	if span := deps.Config.Proxy.JitterSpan; span > 0 {
		cfg.JitterSpan = span
	}
	return cfg
}

var _ domain.QuoteEventSink = (*usecase.QuoteRecorder)(nil)
