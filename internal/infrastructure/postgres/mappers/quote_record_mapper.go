package mappers

import (
	"encoding/json"
	"strings"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/postgres/models"
)

func ToGORMQuoteRecord(event domain.QuoteEvent) (*models.QuoteRecordModel, error) {
	prices, err := json.Marshal(event.Prices)
	if err != nil {
		return nil, err
	}
	return &models.QuoteRecordModel{
		EventID:  event.ID,
		CacheKey: event.CacheKey,
		Source:   string(event.Source),
		Prices:   prices,
		ServedAt: event.ServedAt,
	}, nil
}

func ToDomainQuoteEvent(model *models.QuoteRecordModel) (domain.QuoteEvent, error) {
	var prices domain.Quote
	if err := json.Unmarshal(model.Prices, &prices); err != nil {
		return domain.QuoteEvent{}, err
	}
	var ids []string
	if model.CacheKey != "" {
		ids = strings.Split(model.CacheKey, ",")
	}
	return domain.QuoteEvent{
		ID:       model.EventID,
		CacheKey: model.CacheKey,
		IDs:      ids,
		Source:   domain.QuoteSource(model.Source),
		Prices:   prices,
		ServedAt: model.ServedAt,
	}, nil
}
