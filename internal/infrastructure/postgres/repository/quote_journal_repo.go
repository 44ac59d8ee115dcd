package repository

import (
	"context"
	"fmt"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultQuoteJournal struct {
	DB *gorm.DB
}

func NewDefaultQuoteJournal(db *gorm.DB) *DefaultQuoteJournal {
	return &DefaultQuoteJournal{
		DB: db,
	}
}

func (r *DefaultQuoteJournal) Record(ctx context.Context, event domain.QuoteEvent) error {
	record, err := mappers.ToGORMQuoteRecord(event)
	if err != nil {
		return fmt.Errorf("map quote event %s: %w", event.ID, err)
	}
	return r.DB.WithContext(ctx).Create(record).Error
}

// Recent returns the latest journaled quotes, newest first.
func (r *DefaultQuoteJournal) Recent(ctx context.Context, limit int) ([]domain.QuoteEvent, error) {
	var records []*models.QuoteRecordModel
	if err := r.DB.WithContext(ctx).
		Order("served_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}

	events := make([]domain.QuoteEvent, 0, len(records))
	for _, record := range records {
		event, err := mappers.ToDomainQuoteEvent(record)
		if err != nil {
			return nil, fmt.Errorf("map quote record %d: %w", record.ID, err)
		}
		events = append(events, event)
	}
	return events, nil
}
