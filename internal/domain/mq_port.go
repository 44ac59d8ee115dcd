package domain

import "context"

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}

// QuoteJournal appends served quotes to durable storage.
type QuoteJournal interface {
	Record(ctx context.Context, event QuoteEvent) error
}

// QuoteEventSink receives every quote the proxy serves.
type QuoteEventSink interface {
	QuoteServed(event QuoteEvent)
}
