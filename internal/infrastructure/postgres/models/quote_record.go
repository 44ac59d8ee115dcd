package models

import "time"

type QuoteRecordModel struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	EventID  string    `gorm:"size:32;uniqueIndex"`
	CacheKey string    `gorm:"index"`
	Source   string    `gorm:"size:16"`
	Prices   []byte    `gorm:"type:jsonb"`
	ServedAt time.Time `gorm:"index"`
}

func (QuoteRecordModel) TableName() string {
	return "quote_records"
}
