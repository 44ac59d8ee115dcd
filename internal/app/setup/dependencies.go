package setup

import (
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-price-proxy/internal/config"
	infrastructure "github.com/LavaJover/shvark-price-proxy/internal/infrastructure/exchange_providers"
	publisher "github.com/LavaJover/shvark-price-proxy/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/postgres/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config   *config.PriceProxyConfig
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.ProxyMetrics
	Provider *infrastructure.CoinGeckoProvider

	// Optional sinks, nil when disabled in config.
	DB        *gorm.DB
	Journal   *repository.DefaultQuoteJournal
	Publisher *publisher.DefaultKafkaPublisher
}

func InitializeDependencies(cfg *config.PriceProxyConfig, logger *slog.Logger) (*Dependencies, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Metrics:  metrics.NewProxyMetrics(registry),
		Provider: infrastructure.NewCoinGeckoProvider(infrastructure.CoinGeckoConfig{
			BaseURL:   cfg.Upstream.BaseURL,
			UserAgent: cfg.Upstream.UserAgent,
			Timeout:   cfg.Upstream.Timeout,
		}),
	}

	if cfg.Journal.Enabled() {
		db, err := postgres.InitDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("quote journal: %w", err)
		}
		deps.DB = db
		deps.Journal = repository.NewDefaultQuoteJournal(db)
		logger.Info("Quote journal enabled")
	}

	if cfg.KafkaService.Enabled() {
		deps.Publisher = publisher.NewDefaultKafkaPublisher(cfg.KafkaService.Brokers, logger)
		logger.Info("Kafka quote events enabled", "brokers", cfg.KafkaService.Brokers, "topic", cfg.KafkaService.Topic)
	}

	return deps, nil
}

// Close releases the optional sinks.
func (d *Dependencies) Close() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Logger.Error("Failed to close kafka publisher", "error", err)
		}
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
