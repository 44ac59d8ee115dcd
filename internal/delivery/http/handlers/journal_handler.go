package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/LavaJover/shvark-price-proxy/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-price-proxy/internal/domain"
)

const (
	defaultJournalLimit = 20
	maxJournalLimit     = 500
)

// QuoteHistory lists recently journaled quotes.
type QuoteHistory interface {
	Recent(ctx context.Context, limit int) ([]domain.QuoteEvent, error)
}

type JournalHandler struct {
	history QuoteHistory
}

func NewJournalHandler(history QuoteHistory) *JournalHandler {
	return &JournalHandler{history: history}
}

func (h *JournalHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultJournalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxJournalLimit)
	}

	quotes, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read quote journal")
		return
	}
	writeJSON(w, http.StatusOK, response.JournalResponse{Count: len(quotes), Quotes: quotes})
}
