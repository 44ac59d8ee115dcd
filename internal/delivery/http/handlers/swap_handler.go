package handlers

import (
	"errors"
	"net/http"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/LavaJover/shvark-price-proxy/internal/usecase"
)

type SwapHandler struct {
	swap usecase.SwapUsecase
}

func NewSwapHandler(swap usecase.SwapUsecase) *SwapHandler {
	return &SwapHandler{swap: swap}
}

func (h *SwapHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	quote, err := h.swap.Quote(r.Context(), query.Get("from"), query.Get("to"), query.Get("amount"))
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrZeroRate):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		writeSourced(w, quote.Source, quote)
	}
}
