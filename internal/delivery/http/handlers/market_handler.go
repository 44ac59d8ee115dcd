package handlers

import (
	"errors"
	"net/http"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/LavaJover/shvark-price-proxy/internal/usecase"
)

type MarketHandler struct {
	market usecase.MarketUsecase
}

func NewMarketHandler(market usecase.MarketUsecase) *MarketHandler {
	return &MarketHandler{market: market}
}

func (h *MarketHandler) GetTokens(w http.ResponseWriter, r *http.Request) {
	tokens, source := h.market.Tokens(r.Context())
	writeSourced(w, source, tokens)
}

func (h *MarketHandler) GetTokenData(w http.ResponseWriter, r *http.Request) {
	detail, source, err := h.market.TokenData(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeMarketError(w, err)
		return
	}
	writeSourced(w, source, detail)
}

func (h *MarketHandler) GetTokenChart(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	chart, source, err := h.market.TokenChart(r.Context(), query.Get("id"), query.Get("days"), query.Get("interval"))
	if err != nil {
		writeMarketError(w, err)
		return
	}
	writeSourced(w, source, chart)
}

func writeMarketError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrTokenIDRequired) {
		writeError(w, http.StatusBadRequest, "Token ID is required")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}
