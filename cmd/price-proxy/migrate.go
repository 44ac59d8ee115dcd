package main

import (
	"errors"
	"log/slog"

	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/logger"
	migrations "github.com/LavaJover/shvark-price-proxy/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the quote journal schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(migrations.Up), string(migrations.Down)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled() {
				return errors.New("journal.dsn is not configured")
			}
			slog.SetDefault(logger.New(cfg.LogConfig, cmd.ErrOrStderr()))

			direction := migrations.Up
			if len(args) == 1 {
				direction = migrations.Direction(args[0])
			}

			db, err := postgres.InitDB(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			return migrations.RunMigrations(db, cfg.Journal.MigrationsPath, direction)
		},
	}
}
