package main

import (
	"log"
	"os"

	"github.com/LavaJover/shvark-price-proxy/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "price-proxy",
		Short:         "USD price proxy with caching, rate-limit backoff and static fallbacks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default $"+config.ConfigPathEnv+")")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newRatesCmd(), newEventsCmd())
	return root
}

func loadConfig() (*config.PriceProxyConfig, error) {
	path := configPath
	if path == "" {
		path = os.Getenv(config.ConfigPathEnv)
	}
	return config.Load(path)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}

	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("price-proxy: %v", err)
	}
}
