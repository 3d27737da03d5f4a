// Package scanner drives the scan pipeline: fetch Kalshi game markets,
// resolve each to its Polymarket counterpart, evaluate the pair for
// arbitrage, and persist what it finds. Markets are processed concurrently
// with per-market isolation, so one bad ticker cannot abort a batch.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/arbscout/internal/arbitrage"
	"github.com/alanyoungcy/arbscout/internal/domain"
	"github.com/alanyoungcy/arbscout/internal/notify"
	"github.com/alanyoungcy/arbscout/internal/platform/kalshi"
	"github.com/alanyoungcy/arbscout/internal/resolver"
	"github.com/alanyoungcy/arbscout/internal/service"
)

// MarketSource fetches Kalshi markets, by series listing or single ticker.
type MarketSource interface {
	GetMarketsBySeries(ctx context.Context, seriesTicker, status string) ([]kalshi.Market, error)
	GetMarket(ctx context.Context, ticker string) (kalshi.Market, error)
}

// Config holds the scan parameters.
type Config struct {
	Series    []string
	Workers   int
	MinProfit decimal.Decimal
}

// Scanner runs batch scans over the configured Kalshi series.
type Scanner struct {
	cfg      Config
	source   MarketSource
	resolver *resolver.Resolver
	eval     *arbitrage.Evaluator
	matches  domain.MatchStore
	arbs     *service.ArbService
	archiver domain.ReportArchiver
	notifier *notify.Notifier
	logger   *slog.Logger
}

// New creates a Scanner. archiver and notifier may be nil.
func New(
	cfg Config,
	source MarketSource,
	res *resolver.Resolver,
	eval *arbitrage.Evaluator,
	matches domain.MatchStore,
	arbs *service.ArbService,
	archiver domain.ReportArchiver,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *Scanner {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Scanner{
		cfg:      cfg,
		source:   source,
		resolver: res,
		eval:     eval,
		matches:  matches,
		arbs:     arbs,
		archiver: archiver,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "scanner")),
	}
}

// Scan fetches every open market across the configured series, resolves and
// evaluates each concurrently, and returns the aggregated report. Scan only
// fails when a whole series listing cannot be fetched; per-market errors are
// counted in the report instead.
func (s *Scanner) Scan(ctx context.Context) (domain.ScanReport, error) {
	report := domain.ScanReport{
		StartedAt: time.Now().UTC(),
		Series:    s.cfg.Series,
	}

	var records []domain.MarketRecord
	for _, series := range s.cfg.Series {
		markets, err := s.source.GetMarketsBySeries(ctx, series, "open")
		if err != nil {
			return report, err
		}
		for i := range markets {
			rec, ok := s.recordFor(markets[i])
			if !ok {
				continue
			}
			records = append(records, rec)
		}
		s.logger.DebugContext(ctx, "series listed",
			slog.String("series", series),
			slog.Int("markets", len(markets)),
		)
	}
	report.Scanned = len(records)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i := range records {
		rec := records[i]
		g.Go(func() error {
			outcome := s.processOne(gctx, rec)
			mu.Lock()
			defer mu.Unlock()
			switch outcome.kind {
			case outcomeMatched:
				report.Matched++
				report.Opportunities = append(report.Opportunities, outcome.opps...)
			case outcomeNoMatch:
				report.NoMatch++
			case outcomeFailed:
				report.Failed++
			}
			return nil
		})
	}
	_ = g.Wait()
	report.FinishedAt = time.Now().UTC()

	s.logger.InfoContext(ctx, "scan finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("matched", report.Matched),
		slog.Int("no_match", report.NoMatch),
		slog.Int("failed", report.Failed),
		slog.Int("opportunities", len(report.Opportunities)),
	)

	if s.archiver != nil {
		if path, err := s.archiver.ArchiveReport(ctx, report); err != nil {
			s.logger.WarnContext(ctx, "archive failed", slog.String("error", err.Error()))
		} else {
			s.logger.InfoContext(ctx, "report archived", slog.String("path", path))
		}
	}

	if s.notifier != nil {
		title, message := notify.FormatReport(report)
		if err := s.notifier.Notify(ctx, "scan_finished", title, message); err != nil {
			s.logger.WarnContext(ctx, "notify failed", slog.String("error", err.Error()))
		}
	}

	return report, ctx.Err()
}

// ScanIfStale runs a scan only when the stored matches are older than
// staleness, or when none are stored yet. The bool reports whether a scan
// ran.
func (s *Scanner) ScanIfStale(ctx context.Context, staleness time.Duration) (domain.ScanReport, bool, error) {
	oldest, err := s.matches.OldestUpdate(ctx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		// Nothing stored yet.
	case err != nil:
		return domain.ScanReport{}, false, err
	case time.Since(oldest) < staleness:
		return domain.ScanReport{}, false, nil
	}

	report, err := s.Scan(ctx)
	return report, true, err
}

// CheckTicker fetches a single Kalshi market by ticker, resolves it, and
// evaluates the pair with the configured profit floor. It is a read-only
// inspection path: nothing is persisted or notified. A ticker without a
// league token cannot be a game market and fails with
// domain.ErrUnparseableTicker.
func (s *Scanner) CheckTicker(ctx context.Context, ticker string) (domain.MatchedPair, []domain.Opportunity, error) {
	m, err := s.source.GetMarket(ctx, ticker)
	if err != nil {
		return domain.MatchedPair{}, nil, err
	}

	rec, ok := s.recordFor(m)
	if !ok {
		return domain.MatchedPair{}, nil, fmt.Errorf("scanner: ticker %s: no league token: %w", ticker, domain.ErrUnparseableTicker)
	}

	pair, err := s.resolver.Resolve(ctx, rec)
	if err != nil {
		return domain.MatchedPair{}, nil, err
	}

	return pair, s.eval.Evaluate(pair, s.cfg.MinProfit), nil
}

type outcomeKind int

const (
	outcomeMatched outcomeKind = iota
	outcomeNoMatch
	outcomeFailed
)

type marketOutcome struct {
	kind outcomeKind
	opps []domain.Opportunity
}

// processOne resolves and evaluates a single Kalshi record. All persistence
// errors downgrade to a failed outcome; they never propagate.
func (s *Scanner) processOne(ctx context.Context, rec domain.MarketRecord) marketOutcome {
	pair, err := s.resolver.Resolve(ctx, rec)
	if err != nil {
		if errors.Is(err, domain.ErrNoMatch) {
			s.logger.DebugContext(ctx, "no counterpart",
				slog.String("ticker", rec.ID),
			)
			return marketOutcome{kind: outcomeNoMatch}
		}
		s.logger.WarnContext(ctx, "resolve failed",
			slog.String("ticker", rec.ID),
			slog.String("error", err.Error()),
		)
		return marketOutcome{kind: outcomeFailed}
	}

	opps := s.eval.Evaluate(pair, s.cfg.MinProfit)

	var recorded []domain.Opportunity
	for _, opp := range opps {
		saved, err := s.arbs.Record(ctx, opp)
		if err != nil {
			s.logger.WarnContext(ctx, "record opportunity failed",
				slog.String("ticker", rec.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		recorded = append(recorded, saved)
	}

	if err := s.matches.UpsertPair(ctx, pair, arbitrage.Best(recorded)); err != nil {
		s.logger.WarnContext(ctx, "upsert pair failed",
			slog.String("ticker", rec.ID),
			slog.String("error", err.Error()),
		)
		return marketOutcome{kind: outcomeFailed}
	}

	return marketOutcome{kind: outcomeMatched, opps: recorded}
}

// recordFor converts a Kalshi API market into the venue-agnostic record. A
// parseable ticker supplies league and subject team directly; otherwise the
// league token and trailing segment are used so the record can still reach
// fuzzy resolution. Markets with no league token are not game markets and
// are skipped.
func (s *Scanner) recordFor(m kalshi.Market) (domain.MarketRecord, bool) {
	if t, err := resolver.ParseTicker(m.Ticker); err == nil {
		return m.Record(t.League, t.Subject), true
	}

	league, ok := domain.LeagueFromIdentifier(m.Ticker)
	if !ok {
		return domain.MarketRecord{}, false
	}
	segs := strings.Split(strings.ToUpper(m.Ticker), "-")
	return m.Record(league, segs[len(segs)-1]), true
}
