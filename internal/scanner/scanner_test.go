package scanner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/arbscout/internal/alias"
	"github.com/alanyoungcy/arbscout/internal/arbitrage"
	"github.com/alanyoungcy/arbscout/internal/domain"
	"github.com/alanyoungcy/arbscout/internal/platform/kalshi"
	"github.com/alanyoungcy/arbscout/internal/resolver"
	"github.com/alanyoungcy/arbscout/internal/service"
)

type fakeSource struct {
	markets map[string][]kalshi.Market
	err     error
}

func (f *fakeSource) GetMarketsBySeries(_ context.Context, series, _ string) ([]kalshi.Market, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.markets[series], nil
}

func (f *fakeSource) GetMarket(_ context.Context, ticker string) (kalshi.Market, error) {
	if f.err != nil {
		return kalshi.Market{}, f.err
	}
	for _, markets := range f.markets {
		for _, m := range markets {
			if m.Ticker == ticker {
				return m, nil
			}
		}
	}
	return kalshi.Market{}, domain.ErrNotFound
}

type fakeIndex struct {
	mu         sync.Mutex
	bySlug     map[string]domain.MarketRecord
	slugErrs   map[string]error
	searchHits map[string][]domain.MarketRecord
}

func (f *fakeIndex) GetMarketBySlug(_ context.Context, slug string) (domain.MarketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.slugErrs[slug]; err != nil {
		return domain.MarketRecord{}, err
	}
	rec, ok := f.bySlug[slug]
	if !ok {
		return domain.MarketRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (f *fakeIndex) SearchMarkets(_ context.Context, query string) ([]domain.MarketRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchHits[query], nil
}

type fakeMatchStore struct {
	mu      sync.Mutex
	upserts []domain.MatchedPair
	bests   []*domain.Opportunity
	oldest  time.Time
	noRows  bool
}

func (f *fakeMatchStore) UpsertPair(_ context.Context, pair domain.MatchedPair, best *domain.Opportunity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, pair)
	f.bests = append(f.bests, best)
	return nil
}

func (f *fakeMatchStore) ListMatches(context.Context, int) ([]domain.StoredMatch, error) {
	return nil, nil
}

func (f *fakeMatchStore) OldestUpdate(context.Context) (time.Time, error) {
	if f.noRows {
		return time.Time{}, domain.ErrNotFound
	}
	return f.oldest, nil
}

type fakeArbStore struct {
	mu       sync.Mutex
	inserted []domain.Opportunity
}

func (f *fakeArbStore) Insert(_ context.Context, opp domain.Opportunity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, opp)
	return nil
}

func (f *fakeArbStore) ListRecent(context.Context, int) ([]domain.Opportunity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserted, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func polyRecord(slug, labelA, priceA, labelB, priceB string) domain.MarketRecord {
	pa := decimal.RequireFromString(priceA)
	pb := decimal.RequireFromString(priceB)
	return domain.MarketRecord{
		Venue:  domain.VenuePolymarket,
		ID:     slug,
		League: domain.LeagueNBA,
		Outcomes: [2]domain.Outcome{
			{Label: labelA, PriceYes: &pa},
			{Label: labelB, PriceYes: &pb},
		},
	}
}

func newScanner(t *testing.T, src MarketSource, idx resolver.MarketIndex, matches domain.MatchStore, arbs domain.ArbStore) *Scanner {
	t.Helper()
	dict, err := alias.Default()
	if err != nil {
		t.Fatalf("alias.Default: %v", err)
	}
	res := resolver.New(idx, dict, 0, discard())
	eval := arbitrage.NewEvaluator(dict)
	svc := service.NewArbService(arbs, nil, discard())
	cfg := Config{Series: []string{"KXNBAGAME"}, Workers: 4, MinProfit: decimal.Zero}
	return New(cfg, src, res, eval, matches, svc, nil, nil, discard())
}

func TestScanCountsOutcomes(t *testing.T) {
	src := &fakeSource{markets: map[string][]kalshi.Market{
		"KXNBAGAME": {
			// Resolves deterministically and yields one opportunity.
			{Ticker: "KXNBAGAME-25DEC23BKNPHI-BKN", Title: "Nets at 76ers winner?", Status: "open", YesAsk: 40, NoAsk: 55},
			// Derived slug has no market and search comes back empty.
			{Ticker: "KXNBAGAME-25DEC23DENLAL-DEN", Title: "Nuggets at Lakers winner?", Status: "open", YesAsk: 50, NoAsk: 52},
			// Slug lookup fails with a transport error.
			{Ticker: "KXNBAGAME-25DEC23MIABOS-MIA", Title: "Heat at Celtics winner?", Status: "open", YesAsk: 50, NoAsk: 52},
			// No league token, not a game market: skipped before processing.
			{Ticker: "KXHIGHTEMP-25DEC23", Title: "High temp in NYC", Status: "open"},
		},
	}}
	idx := &fakeIndex{
		bySlug: map[string]domain.MarketRecord{
			"nba-bkn-phi-2025-12-23": polyRecord("nba-bkn-phi-2025-12-23",
				"Brooklyn Nets", "0.62", "Philadelphia 76ers", "0.38"),
		},
		slugErrs: map[string]error{
			"nba-mia-bos-2025-12-23": errors.New("dial tcp: connection refused"),
		},
	}
	matches := &fakeMatchStore{}
	arbs := &fakeArbStore{}

	report, err := newScanner(t, src, idx, matches, arbs).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if report.Scanned != 3 {
		t.Fatalf("scanned = %d, want 3", report.Scanned)
	}
	if report.Matched != 1 || report.NoMatch != 1 || report.Failed != 1 {
		t.Fatalf("matched/no_match/failed = %d/%d/%d", report.Matched, report.NoMatch, report.Failed)
	}
	if len(report.Opportunities) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(report.Opportunities))
	}

	opp := report.Opportunities[0]
	if opp.ID == "" || opp.DetectedAt.IsZero() {
		t.Fatalf("opportunity missing identity: %+v", opp)
	}
	if !opp.Profit.Equal(decimal.RequireFromString("0.22")) {
		t.Fatalf("profit = %s", opp.Profit)
	}
	if len(arbs.inserted) != 1 {
		t.Fatalf("inserted = %d, want 1", len(arbs.inserted))
	}

	if len(matches.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(matches.upserts))
	}
	if matches.bests[0] == nil || !matches.bests[0].Profit.Equal(opp.Profit) {
		t.Fatalf("best = %+v", matches.bests[0])
	}
	if report.StartedAt.IsZero() || report.FinishedAt.Before(report.StartedAt) {
		t.Fatalf("report timestamps: %v .. %v", report.StartedAt, report.FinishedAt)
	}
}

func TestScanMatchWithoutOpportunity(t *testing.T) {
	// Prices sum above a dollar on both combinations: the pair is stored, but
	// with no best opportunity.
	src := &fakeSource{markets: map[string][]kalshi.Market{
		"KXNBAGAME": {
			{Ticker: "KXNBAGAME-25DEC23BKNPHI-BKN", Title: "Nets at 76ers winner?", Status: "open", YesAsk: 65, NoAsk: 40},
		},
	}}
	idx := &fakeIndex{
		bySlug: map[string]domain.MarketRecord{
			"nba-bkn-phi-2025-12-23": polyRecord("nba-bkn-phi-2025-12-23",
				"Brooklyn Nets", "0.62", "Philadelphia 76ers", "0.38"),
		},
	}
	matches := &fakeMatchStore{}
	arbs := &fakeArbStore{}

	report, err := newScanner(t, src, idx, matches, arbs).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Matched != 1 || len(report.Opportunities) != 0 {
		t.Fatalf("matched = %d, opportunities = %d", report.Matched, len(report.Opportunities))
	}
	if len(matches.upserts) != 1 || matches.bests[0] != nil {
		t.Fatalf("upserts = %d, best = %+v", len(matches.upserts), matches.bests[0])
	}
}

func TestScanSeriesListingErrorAborts(t *testing.T) {
	listErr := errors.New("kalshi: status 500")
	src := &fakeSource{err: listErr}
	s := newScanner(t, src, &fakeIndex{}, &fakeMatchStore{}, &fakeArbStore{})

	_, err := s.Scan(context.Background())
	if !errors.Is(err, listErr) {
		t.Fatalf("err = %v, want listing error", err)
	}
}

func TestCheckTicker(t *testing.T) {
	src := &fakeSource{markets: map[string][]kalshi.Market{
		"KXNBAGAME": {
			{Ticker: "KXNBAGAME-25DEC23BKNPHI-BKN", Title: "Nets at 76ers winner?", Status: "open", YesAsk: 40, NoAsk: 55},
			{Ticker: "KXHIGHTEMP-25DEC23", Title: "High temp in NYC", Status: "open"},
		},
	}}
	idx := &fakeIndex{
		bySlug: map[string]domain.MarketRecord{
			"nba-bkn-phi-2025-12-23": polyRecord("nba-bkn-phi-2025-12-23",
				"Brooklyn Nets", "0.62", "Philadelphia 76ers", "0.38"),
		},
	}
	matches := &fakeMatchStore{}
	arbs := &fakeArbStore{}
	sc := newScanner(t, src, idx, matches, arbs)

	pair, opps, err := sc.CheckTicker(context.Background(), "KXNBAGAME-25DEC23BKNPHI-BKN")
	if err != nil {
		t.Fatalf("CheckTicker: %v", err)
	}
	if pair.Polymarket.ID != "nba-bkn-phi-2025-12-23" {
		t.Fatalf("matched %s", pair.Polymarket.ID)
	}
	if len(opps) != 1 || !opps[0].Profit.Equal(decimal.RequireFromString("0.22")) {
		t.Fatalf("opportunities = %+v", opps)
	}

	// Read-only: the check must not touch either store.
	if len(arbs.inserted) != 0 || len(matches.upserts) != 0 {
		t.Fatalf("check persisted: inserted=%d upserts=%d", len(arbs.inserted), len(matches.upserts))
	}

	if _, _, err := sc.CheckTicker(context.Background(), "KXNBAGAME-25DEC23ZZZQQQ"); err == nil {
		t.Fatal("want error for missing ticker")
	} else if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if _, _, err := sc.CheckTicker(context.Background(), "KXHIGHTEMP-25DEC23"); !errors.Is(err, domain.ErrUnparseableTicker) {
		t.Fatalf("err = %v, want ErrUnparseableTicker", err)
	}
}

func TestScanIfStale(t *testing.T) {
	src := &fakeSource{}
	idx := &fakeIndex{}
	arbs := &fakeArbStore{}

	// Fresh matches: skip the scan.
	matches := &fakeMatchStore{oldest: time.Now().UTC()}
	_, ran, err := newScanner(t, src, idx, matches, arbs).ScanIfStale(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("ScanIfStale: %v", err)
	}
	if ran {
		t.Fatal("scan ran despite fresh matches")
	}

	// Stale matches: scan.
	matches = &fakeMatchStore{oldest: time.Now().UTC().Add(-2 * time.Hour)}
	_, ran, err = newScanner(t, src, idx, matches, arbs).ScanIfStale(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("ScanIfStale: %v", err)
	}
	if !ran {
		t.Fatal("scan skipped despite stale matches")
	}

	// Nothing stored yet: scan.
	matches = &fakeMatchStore{noRows: true}
	_, ran, err = newScanner(t, src, idx, matches, arbs).ScanIfStale(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("ScanIfStale: %v", err)
	}
	if !ran {
		t.Fatal("scan skipped despite empty store")
	}
}
