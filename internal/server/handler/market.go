package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// TickerChecker resolves and evaluates a single Kalshi ticker on demand.
type TickerChecker interface {
	CheckTicker(ctx context.Context, ticker string) (domain.MatchedPair, []domain.Opportunity, error)
}

// MarketHandler serves ad-hoc single-market lookups.
type MarketHandler struct {
	checker TickerChecker
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler backed by the given checker.
func NewMarketHandler(checker TickerChecker, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{checker: checker, logger: logger}
}

// CheckTicker fetches one Kalshi market, resolves its Polymarket counterpart,
// and returns the pair with any qualifying opportunities. Nothing is
// persisted.
// GET /api/markets/{ticker}
func (h *MarketHandler) CheckTicker(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	pair, opps, err := h.checker.CheckTicker(r.Context(), ticker)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUnparseableTicker):
		writeError(w, http.StatusBadRequest, "not a game market ticker")
		return
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "market not found")
		return
	case errors.Is(err, domain.ErrNoMatch):
		writeError(w, http.StatusNotFound, "no counterpart market found")
		return
	default:
		h.logger.ErrorContext(r.Context(), "check ticker failed",
			slog.String("ticker", ticker),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "venue lookup failed")
		return
	}

	if opps == nil {
		opps = []domain.Opportunity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pair":          pair,
		"opportunities": opps,
		"count":         len(opps),
	})
}
