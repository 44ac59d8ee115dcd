package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-price-proxy/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-price-proxy/internal/domain"
)

// SourceHeader reports where an answer came from (live, cache, stale, fallback).
const SourceHeader = "X-Price-Source"

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response.ErrorResponse{Error: message})
}

func writeSourced(w http.ResponseWriter, source domain.QuoteSource, body any) {
	w.Header().Set(SourceHeader, string(source))
	writeJSON(w, http.StatusOK, body)
}
