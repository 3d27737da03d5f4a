package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/arbscout/internal/alias"
	"github.com/alanyoungcy/arbscout/internal/arbitrage"
	"github.com/alanyoungcy/arbscout/internal/platform/kalshi"
	"github.com/alanyoungcy/arbscout/internal/platform/polymarket"
	"github.com/alanyoungcy/arbscout/internal/resolver"
	"github.com/alanyoungcy/arbscout/internal/scanner"
	"github.com/alanyoungcy/arbscout/internal/server"
	"github.com/alanyoungcy/arbscout/internal/server/handler"
	"github.com/alanyoungcy/arbscout/internal/service"
)

// buildPipeline assembles the venue clients, resolver, evaluator, and scanner
// shared by every mode.
func (a *App) buildPipeline(deps *Dependencies) (*scanner.Scanner, *service.ArbService, error) {
	kalshiClient := kalshi.NewClient(a.cfg.Kalshi.BaseURL, a.cfg.Kalshi.ApiKey)
	if a.cfg.Kalshi.RsaPrivateKeyPath != "" {
		pemBytes, err := os.ReadFile(a.cfg.Kalshi.RsaPrivateKeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("app: read kalshi key: %w", err)
		}
		if err := kalshiClient.SetRSAPrivateKey(pemBytes); err != nil {
			return nil, nil, fmt.Errorf("app: load kalshi key: %w", err)
		}
	}

	gamma := polymarket.NewGammaClient(a.cfg.Polymarket.GammaHost)

	var index resolver.MarketIndex = gamma
	if deps.RecordCache != nil {
		index = scanner.NewCachedIndex(gamma, deps.RecordCache, a.logger)
	}

	var aliases *alias.Dictionary
	var err error
	if a.cfg.Matcher.AliasPath != "" {
		aliases, err = alias.Load(a.cfg.Matcher.AliasPath)
	} else {
		aliases, err = alias.Default()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("app: load alias dictionary: %w", err)
	}

	res := resolver.New(index, aliases, a.cfg.Matcher.MinMatchScore, a.logger)
	eval := arbitrage.NewEvaluator(aliases)
	arbSvc := service.NewArbService(deps.ArbStore, deps.Notifier, a.logger)

	sc := scanner.New(
		scanner.Config{
			Series:    a.cfg.Kalshi.SeriesTickers,
			Workers:   a.cfg.Scanner.Workers,
			MinProfit: a.cfg.Scanner.MinProfit,
		},
		kalshiClient,
		res,
		eval,
		deps.MatchStore,
		arbSvc,
		deps.Archiver,
		deps.Notifier,
		a.logger,
	)
	return sc, arbSvc, nil
}

// ScanMode runs a single batch scan and exits.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	sc, _, err := a.buildPipeline(deps)
	if err != nil {
		return err
	}

	report, err := sc.Scan(ctx)
	if err != nil {
		return fmt.Errorf("app: scan: %w", err)
	}

	a.logger.InfoContext(ctx, "scan mode finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("opportunities", len(report.Opportunities)),
	)
	return nil
}

// ServeMode starts the HTTP API and a background loop that re-scans whenever
// the stored matches go stale.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")
	return a.serve(ctx, deps, false)
}

// FullMode is ServeMode preceded by an immediate scan, so the API serves
// fresh data from the start.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")
	return a.serve(ctx, deps, true)
}

func (a *App) serve(ctx context.Context, deps *Dependencies, scanFirst bool) error {
	sc, arbSvc, err := a.buildPipeline(deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	if scanFirst {
		if _, err := sc.Scan(ctx); err != nil {
			a.logger.WarnContext(ctx, "initial scan failed",
				slog.String("error", err.Error()),
			)
			// The refresh loop and POST /api/refresh can retry.
		}
	}

	// Staleness-driven refresh loop.
	g.Go(func() error {
		ticker := time.NewTicker(a.cfg.Scanner.Interval.Duration)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				_, ran, err := sc.ScanIfStale(ctx, a.cfg.Scanner.Staleness.Duration)
				if err != nil {
					a.logger.WarnContext(ctx, "periodic scan failed",
						slog.String("error", err.Error()),
					)
				} else if !ran {
					a.logger.DebugContext(ctx, "matches still fresh, skipping scan")
				}
			}
		}
	})

	// HTTP API.
	if a.cfg.Server.Enabled {
		srv := server.NewServer(
			server.Config{
				Port:        a.cfg.Server.Port,
				CORSOrigins: a.cfg.Server.CORSOrigins,
				APIKey:      a.cfg.Server.ApiKey,
			},
			server.Handlers{
				Health:  handler.NewHealthHandler(a.logger),
				Market:  handler.NewMarketHandler(sc, a.logger),
				Matches: handler.NewMatchHandler(deps.MatchStore, a.logger),
				Arb:     handler.NewArbHandler(arbSvc, a.logger),
				Refresh: handler.NewRefreshHandler(sc, a.logger),
			},
			a.logger,
		)

		g.Go(srv.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
