package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/LavaJover/shvark-price-proxy/internal/infrastructure/metrics"
	"github.com/jaevor/go-nanoid"
)

const (
	sinkKafka   = "kafka"
	sinkJournal = "journal"

	DefaultQuoteQueueSize = 1024
	quoteSinkTimeout      = 5 * time.Second
)

type QuoteRecorderConfig struct {
	QueueSize int
	Topic     string
	// Publisher and Journal are optional; a nil sink is skipped.
	Publisher domain.PublisherPort
	Journal   domain.QuoteJournal
	Metrics   *metrics.ProxyMetrics
	Logger    *slog.Logger
}

// QuoteRecorder fans served quotes out to Kafka and the journal from a
// single worker. Offering an event never blocks: when the queue is full
// the event is dropped.
type QuoteRecorder struct {
	events    chan domain.QuoteEvent
	topic     string
	publisher domain.PublisherPort
	journal   domain.QuoteJournal
	metrics   *metrics.ProxyMetrics
	logger    *slog.Logger
	newID     func() string
}

func NewQuoteRecorder(cfg QuoteRecorderConfig) (*QuoteRecorder, error) {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, fmt.Errorf("create event id generator: %w", err)
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQuoteQueueSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &QuoteRecorder{
		events:    make(chan domain.QuoteEvent, cfg.QueueSize),
		topic:     cfg.Topic,
		publisher: cfg.Publisher,
		journal:   cfg.Journal,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		newID:     idGenerator,
	}, nil
}

// Enabled reports whether any sink is configured.
func (r *QuoteRecorder) Enabled() bool {
	return r.publisher != nil || r.journal != nil
}

func (r *QuoteRecorder) QuoteServed(event domain.QuoteEvent) {
	if !r.Enabled() {
		return
	}
	select {
	case r.events <- event:
	default:
		r.metrics.RecordEventDropped()
		r.logger.Warn("Quote event queue is full, dropping event", "key", event.CacheKey)
	}
}

// Run drains the queue until ctx is cancelled.
func (r *QuoteRecorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-r.events:
			r.handle(ctx, event)
		}
	}
}

func (r *QuoteRecorder) handle(ctx context.Context, event domain.QuoteEvent) {
	if event.ID == "" {
		event.ID = r.newID()
	}

	ctx, cancel := context.WithTimeout(ctx, quoteSinkTimeout)
	defer cancel()

	if r.publisher != nil {
		err := r.publish(ctx, event)
		r.metrics.RecordEventSink(sinkKafka, err)
		if err != nil {
			r.logger.Error("Failed to publish quote event", "event_id", event.ID, "error", err)
		}
	}
	if r.journal != nil {
		err := r.journal.Record(ctx, event)
		r.metrics.RecordEventSink(sinkJournal, err)
		if err != nil {
			r.logger.Error("Failed to journal quote event", "event_id", event.ID, "error", err)
		}
	}
}

func (r *QuoteRecorder) publish(ctx context.Context, event domain.QuoteEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal quote event: %w", err)
	}
	return r.publisher.Publish(ctx, r.topic, domain.Message{Key: []byte(event.CacheKey), Value: value})
}
