package handlers

import (
	"context"
	"net/http"

	"github.com/LavaJover/shvark-price-proxy/internal/usecase"
)

type PriceHandler struct {
	proxy usecase.PriceProxy
}

func NewPriceHandler(proxy usecase.PriceProxy) *PriceHandler {
	return &PriceHandler{proxy: proxy}
}

// GetRate always answers 200 with an identifier -> {usd} map.
func (h *PriceHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	// A client hanging up must not abort the upstream call whose result feeds the cache.
	ctx := context.WithoutCancel(r.Context())

	quote, source := h.proxy.Rates(ctx, query.Get("from"), query.Get("to"))
	w.Header().Set("Cache-Control", "no-cache")
	writeSourced(w, source, quote)
}
