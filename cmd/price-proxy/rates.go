package main

import (
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-price-proxy/internal/app/setup"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

type ratesOutput struct {
	Source string `json:"source"`
	Prices any    `json:"prices"`
}

func newRatesCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Look up a price pair once through the proxy and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			// one-off lookups never publish or journal
			cfg.KafkaService.Brokers = nil
			cfg.Journal.Dsn = ""

			log := logger.New(cfg.LogConfig, cmd.ErrOrStderr())
			deps, err := setup.InitializeDependencies(cfg, log)
			if err != nil {
				return err
			}
			defer deps.Close()
			ucs, err := setup.InitializeUseCases(deps)
			if err != nil {
				return err
			}

			quote, source := ucs.PriceProxy.Rates(cmd.Context(), from, to)
			out, err := json.MarshalIndent(ratesOutput{Source: string(source), Prices: quote}, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "asset identifier (default tether)")
	cmd.Flags().StringVar(&to, "to", "", "asset identifier (default bitcoin)")
	return cmd
}
