package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	publisher "github.com/LavaJover/shvark-price-proxy/internal/infrastructure/kafka"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var groupID string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail quote events from the configured Kafka topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.KafkaService.Enabled() {
				return errors.New("kafka.brokers is not configured")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sub := publisher.NewDefaultKafkaSubscriber(cfg.KafkaService.Brokers)
			messages, err := sub.Subscribe(ctx, cfg.KafkaService.Topic, groupID)
			if err != nil {
				return err
			}
			for msg := range messages {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", msg.Key, msg.Value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&groupID, "group", "price-proxy-tail", "kafka consumer group")
	return cmd
}
