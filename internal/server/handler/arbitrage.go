package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// OpportunityLister provides read access to recorded opportunities.
type OpportunityLister interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error)
}

// ArbHandler serves recorded arbitrage opportunities.
type ArbHandler struct {
	arbs   OpportunityLister
	logger *slog.Logger
}

// NewArbHandler creates an ArbHandler backed by the given service.
func NewArbHandler(arbs OpportunityLister, logger *slog.Logger) *ArbHandler {
	return &ArbHandler{arbs: arbs, logger: logger}
}

// ListRecent returns recent opportunities, optionally filtered to those whose
// profit strictly exceeds min_profit.
// GET /api/arbitrage?min_profit=0.02&limit=50
func (h *ArbHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	minProfit := decimal.Zero
	if v := r.URL.Query().Get("min_profit"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "min_profit must be a decimal number")
			return
		}
		minProfit = d
	}

	opps, err := h.arbs.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}

	filtered := make([]domain.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if opp.Profit.GreaterThan(minProfit) {
			filtered = append(filtered, opp)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": filtered,
		"count":         len(filtered),
		"min_profit":    minProfit,
	})
}
