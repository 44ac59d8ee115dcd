package postgres

import (
	"fmt"
	"log"

	"github.com/LavaJover/shvark-price-proxy/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the journal database. Schema is owned by the migrations.
func InitDB(cfg *config.PriceProxyConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Journal.Dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}
	return db, nil
}

func MustInitDB(cfg *config.PriceProxyConfig) *gorm.DB {
	db, err := InitDB(cfg)
	if err != nil {
		log.Fatalf("%v\n", err)
	}
	return db
}
