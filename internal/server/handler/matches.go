package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// MatchHandler serves the stored Kalshi/Polymarket match map.
type MatchHandler struct {
	matches domain.MatchStore
	logger  *slog.Logger
}

// NewMatchHandler creates a MatchHandler backed by the given store.
func NewMatchHandler(matches domain.MatchStore, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, logger: logger}
}

// ListMatches returns the most recently updated matches.
// GET /api/markets/matches?limit=50
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.matches.ListMatches(r.Context(), parseLimit(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list matches failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	if matches == nil {
		matches = []domain.StoredMatch{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matches": matches,
		"count":   len(matches),
	})
}
