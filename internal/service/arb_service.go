// Package service coordinates the scan pipeline's side effects: persisting
// results and alerting operators.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/arbscout/internal/domain"
	"github.com/alanyoungcy/arbscout/internal/notify"
)

// ArbService records detected arbitrage opportunities and serves read access
// to recent history.
type ArbService struct {
	store    domain.ArbStore
	notifier *notify.Notifier
	logger   *slog.Logger
}

// NewArbService creates an ArbService. notifier may be nil when no channels
// are configured.
func NewArbService(store domain.ArbStore, notifier *notify.Notifier, logger *slog.Logger) *ArbService {
	return &ArbService{
		store:    store,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "arb_service")),
	}
}

// Record assigns identity and detection time to an evaluated opportunity,
// persists it, and alerts operators. The evaluator leaves both fields zero so
// evaluation stays deterministic.
func (s *ArbService) Record(ctx context.Context, opp domain.Opportunity) (domain.Opportunity, error) {
	opp.ID = uuid.NewString()
	opp.DetectedAt = time.Now().UTC()

	if err := s.store.Insert(ctx, opp); err != nil {
		return domain.Opportunity{}, fmt.Errorf("arb_service: record: %w", err)
	}

	s.logger.InfoContext(ctx, "opportunity recorded",
		slog.String("id", opp.ID),
		slog.String("kalshi_ticker", opp.KalshiTicker),
		slog.String("poly_slug", opp.PolySlug),
		slog.String("direction", string(opp.Direction)),
		slog.String("profit", opp.Profit.String()),
	)

	if s.notifier != nil {
		title, message := notify.FormatOpportunity(opp)
		if err := s.notifier.Notify(ctx, "arb_detected", title, message); err != nil {
			s.logger.WarnContext(ctx, "notify failed",
				slog.String("id", opp.ID),
				slog.String("error", err.Error()),
			)
			// Non-fatal: the opportunity is already persisted.
		}
	}

	return opp, nil
}

// ListRecent returns the most recent opportunities, newest first.
func (s *ArbService) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	opps, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("arb_service: list recent: %w", err)
	}
	return opps, nil
}
