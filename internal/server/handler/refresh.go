package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// ScanRunner triggers a full scan across the configured series.
type ScanRunner interface {
	Scan(ctx context.Context) (domain.ScanReport, error)
}

// RefreshHandler triggers an on-demand scan.
type RefreshHandler struct {
	scanner ScanRunner
	logger  *slog.Logger
}

// NewRefreshHandler creates a RefreshHandler backed by the given scanner.
func NewRefreshHandler(scanner ScanRunner, logger *slog.Logger) *RefreshHandler {
	return &RefreshHandler{scanner: scanner, logger: logger}
}

// Refresh runs a scan synchronously and returns its report.
// POST /api/refresh
func (h *RefreshHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.scanner.Scan(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "refresh scan failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "scan failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}
