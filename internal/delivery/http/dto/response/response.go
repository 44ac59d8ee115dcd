package response

import "github.com/LavaJover/shvark-price-proxy/internal/domain"

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status  string                  `json:"status"`
	Backoff *domain.BackoffSnapshot `json:"backoff,omitempty"`
}

type JournalResponse struct {
	Count  int                 `json:"count"`
	Quotes []domain.QuoteEvent `json:"quotes"`
}
