package resolver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

type fakeIndex struct {
	bySlug     map[string]domain.MarketRecord
	slugErr    error
	searchHits []domain.MarketRecord
	searchErr  error
	lastQuery  string
}

func (f *fakeIndex) GetMarketBySlug(_ context.Context, slug string) (domain.MarketRecord, error) {
	if f.slugErr != nil {
		return domain.MarketRecord{}, f.slugErr
	}
	rec, ok := f.bySlug[slug]
	if !ok {
		return domain.MarketRecord{}, domain.ErrNotFound
	}
	return rec, nil
}

func (f *fakeIndex) SearchMarkets(_ context.Context, query string) ([]domain.MarketRecord, error) {
	f.lastQuery = query
	return f.searchHits, f.searchErr
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func kalshiRec(ticker, title string) domain.MarketRecord {
	return domain.MarketRecord{
		Venue:  domain.VenueKalshi,
		ID:     ticker,
		League: domain.LeagueNBA,
		Title:  title,
	}
}

func TestResolveDeterministic(t *testing.T) {
	poly := domain.MarketRecord{Venue: domain.VenuePolymarket, ID: "nba-bkn-phi-2025-12-23"}
	idx := &fakeIndex{bySlug: map[string]domain.MarketRecord{"nba-bkn-phi-2025-12-23": poly}}
	r := New(idx, mustDict(t), 0, discard())

	pair, err := r.Resolve(context.Background(), kalshiRec("KXNBAGAME-25DEC23BKNPHI", "Nets at 76ers?"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pair.Confidence != domain.MatchDeterministic {
		t.Fatalf("confidence = %s", pair.Confidence)
	}
	if pair.Polymarket.ID != poly.ID {
		t.Fatalf("matched %s", pair.Polymarket.ID)
	}
}

func TestResolveFallsBackToSearch(t *testing.T) {
	// Slug derives cleanly but no market carries it, so tier 2 runs.
	hit := domain.MarketRecord{Venue: domain.VenuePolymarket, ID: "m1", Title: "Nets vs. 76ers"}
	idx := &fakeIndex{searchHits: []domain.MarketRecord{hit}}
	r := New(idx, mustDict(t), 0, discard())

	pair, err := r.Resolve(context.Background(), kalshiRec("KXNBAGAME-25DEC23BKNPHI", "Will the Nets win against the 76ers?"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pair.Confidence != domain.MatchFuzzySearch {
		t.Fatalf("confidence = %s", pair.Confidence)
	}
	if pair.MatchScore <= 0 {
		t.Fatalf("score = %f, want > 0", pair.MatchScore)
	}
	if idx.lastQuery != "Nets 76ers" {
		t.Fatalf("query = %q", idx.lastQuery)
	}
}

func TestResolveSearchFailsForUnparseableTicker(t *testing.T) {
	// A ticker without a game block never reaches tier 1's lookup; resolution
	// rests entirely on the title search.
	hit := domain.MarketRecord{Venue: domain.VenuePolymarket, ID: "m2", Title: "Nets vs. 76ers"}
	idx := &fakeIndex{searchHits: []domain.MarketRecord{hit}}
	r := New(idx, mustDict(t), 0, discard())

	pair, err := r.Resolve(context.Background(), kalshiRec("KXNBASERIES-BKN", "Will the Nets win the game?"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pair.Polymarket.ID != "m2" {
		t.Fatalf("matched %s", pair.Polymarket.ID)
	}
}

func TestResolveNoMatch(t *testing.T) {
	idx := &fakeIndex{}
	r := New(idx, mustDict(t), 0, discard())

	_, err := r.Resolve(context.Background(), kalshiRec("KXNBAGAME-25DEC23BKNPHI", "Will the Nets win?"))
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestResolveTransportErrorPropagates(t *testing.T) {
	transport := errors.New("dial tcp: connection refused")

	idx := &fakeIndex{slugErr: transport}
	r := New(idx, mustDict(t), 0, discard())
	_, err := r.Resolve(context.Background(), kalshiRec("KXNBAGAME-25DEC23BKNPHI", "Nets at 76ers"))
	if !errors.Is(err, transport) {
		t.Fatalf("slug lookup err = %v, want wrapped transport error", err)
	}
	if errors.Is(err, domain.ErrNoMatch) {
		t.Fatal("transport failure must not read as a no-match")
	}

	idx = &fakeIndex{searchErr: transport}
	r = New(idx, mustDict(t), 0, discard())
	_, err = r.Resolve(context.Background(), kalshiRec("KXNBAGAME-25DEC23LAXPHI", "Nets at 76ers"))
	if !errors.Is(err, transport) {
		t.Fatalf("search err = %v, want wrapped transport error", err)
	}
}

func TestResolveSimilarityFloor(t *testing.T) {
	hit := domain.MarketRecord{Venue: domain.VenuePolymarket, ID: "m3", Title: "Super Bowl halftime show color"}
	idx := &fakeIndex{searchHits: []domain.MarketRecord{hit}}
	r := New(idx, mustDict(t), 0.8, discard())

	_, err := r.Resolve(context.Background(), kalshiRec("KXNBAGAME-25DEC23BKNPHI", "Will the Nets beat the 76ers?"))
	if !errors.Is(err, domain.ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
}

func TestNormalizeTitle(t *testing.T) {
	got := NormalizeTitle("Will the Brooklyn Nets win their professional basketball game against the 76ers on Dec 23?")
	if want := "Brooklyn Nets 76ers Dec 23"; got != want {
		t.Fatalf("NormalizeTitle = %q, want %q", got, want)
	}
}
