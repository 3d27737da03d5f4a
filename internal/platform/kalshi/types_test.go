package kalshi

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

func TestRecordConvertsCentsToDollars(t *testing.T) {
	m := Market{
		Ticker: "KXNBAGAME-25DEC23BKNPHI-BKN",
		Title:  "Brooklyn Nets to win",
		YesAsk: 40,
		NoAsk:  62,
	}

	rec := m.Record(domain.LeagueNBA, "BKN")

	if rec.Venue != domain.VenueKalshi {
		t.Fatalf("venue = %q, want %q", rec.Venue, domain.VenueKalshi)
	}
	if rec.ID != m.Ticker {
		t.Fatalf("id = %q, want %q", rec.ID, m.Ticker)
	}
	if rec.Outcomes[0].Label != "BKN" {
		t.Fatalf("outcome 0 label = %q, want BKN", rec.Outcomes[0].Label)
	}
	if rec.Outcomes[0].PriceYes == nil || !rec.Outcomes[0].PriceYes.Equal(decimal.RequireFromString("0.40")) {
		t.Fatalf("yes ask = %v, want 0.40", rec.Outcomes[0].PriceYes)
	}
	if rec.Outcomes[1].PriceYes == nil || !rec.Outcomes[1].PriceYes.Equal(decimal.RequireFromString("0.62")) {
		t.Fatalf("no ask = %v, want 0.62", rec.Outcomes[1].PriceYes)
	}
}

func TestRecordZeroCentsMeansAbsentPrice(t *testing.T) {
	m := Market{Ticker: "KXNHLGAME-25DEC23NYRBOS-BOS", YesAsk: 0, NoAsk: 55}

	rec := m.Record(domain.LeagueNHL, "BOS")

	if rec.Outcomes[0].PriceYes != nil {
		t.Fatalf("yes ask = %v, want nil for empty book", rec.Outcomes[0].PriceYes)
	}
	if rec.Outcomes[1].PriceYes == nil {
		t.Fatal("no ask missing, want 0.55")
	}
}
