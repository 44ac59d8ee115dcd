package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-price-proxy/internal/delivery/http/dto/response"
	"github.com/LavaJover/shvark-price-proxy/internal/usecase"
)

const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
)

type HealthHandler struct {
	proxy usecase.PriceProxy
}

func NewHealthHandler(proxy usecase.PriceProxy) *HealthHandler {
	return &HealthHandler{proxy: proxy}
}

func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}

// Ready stays 200 while backing off: the proxy still answers from fallback data.
func (h *HealthHandler) Ready(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.proxy.Backoff()
	status := StatusReady
	if snapshot.Active {
		status = StatusDegraded
	}
	writeJSON(w, http.StatusOK, response.HealthResponse{Status: status, Backoff: &snapshot})
}
