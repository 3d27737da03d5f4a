package arbitrage

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/arbscout/internal/alias"
	"github.com/alanyoungcy/arbscout/internal/domain"
)

func mustDict(t *testing.T) *alias.Dictionary {
	t.Helper()
	d, err := alias.Default()
	if err != nil {
		t.Fatalf("alias.Default: %v", err)
	}
	return d
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// pairFor builds a matched pair with the subject team's Kalshi asks and the
// two Polymarket outcome prices. Outcome order on the Polymarket side is
// subject first here; alignment tests shuffle it.
func pairFor(teamCode string, kalshiYes, kalshiNo, polyYes, polyNo *decimal.Decimal) domain.MatchedPair {
	return domain.MatchedPair{
		Kalshi: domain.MarketRecord{
			Venue:  domain.VenueKalshi,
			ID:     "KXNBAGAME-25DEC23BKNPHI-" + teamCode,
			League: domain.LeagueNBA,
			Outcomes: [2]domain.Outcome{
				{Label: teamCode, PriceYes: kalshiYes},
				{Label: "no", PriceYes: kalshiNo},
			},
		},
		Polymarket: domain.MarketRecord{
			Venue:  domain.VenuePolymarket,
			ID:     "nba-bkn-phi-2025-12-23",
			League: domain.LeagueNBA,
			Outcomes: [2]domain.Outcome{
				{Label: "Brooklyn Nets", PriceYes: polyYes},
				{Label: "Philadelphia 76ers", PriceYes: polyNo},
			},
		},
		Confidence: domain.MatchDeterministic,
	}
}

func TestEvaluateKeepsProfitableComboOnly(t *testing.T) {
	// Kalshi quotes BKN at 0.40/0.55, Polymarket lists the Nets at 0.62 and
	// the 76ers at 0.38. Buying Kalshi YES with the opposing Polymarket
	// outcome costs 0.78 and clears 0.22; the reverse costs 1.17.
	pair := pairFor("BKN", price("0.40"), price("0.55"), price("0.62"), price("0.38"))

	opps := NewEvaluator(mustDict(t)).Evaluate(pair, decimal.Zero)
	if len(opps) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(opps))
	}

	opp := opps[0]
	if opp.Direction != domain.DirYesKalshiNoPoly {
		t.Fatalf("direction = %s", opp.Direction)
	}
	if !opp.Cost.Equal(decimal.RequireFromString("0.78")) {
		t.Fatalf("cost = %s", opp.Cost)
	}
	if !opp.Profit.Equal(decimal.RequireFromString("0.22")) {
		t.Fatalf("profit = %s", opp.Profit)
	}
	if opp.Team != "BKN" || opp.OutcomeLabel != "Brooklyn Nets" {
		t.Fatalf("team = %s, label = %s", opp.Team, opp.OutcomeLabel)
	}
}

func TestEvaluateBothCombosQualify(t *testing.T) {
	// Both sides priced low enough for both combinations to clear.
	pair := pairFor("BKN", price("0.40"), price("0.40"), price("0.45"), price("0.45"))

	opps := NewEvaluator(mustDict(t)).Evaluate(pair, decimal.Zero)
	if len(opps) != 2 {
		t.Fatalf("opportunities = %d, want 2", len(opps))
	}
	if opps[0].Direction != domain.DirYesKalshiNoPoly || opps[1].Direction != domain.DirYesPolyNoKalshi {
		t.Fatalf("directions = %s, %s", opps[0].Direction, opps[1].Direction)
	}
	if !opps[1].KalshiPrice.Equal(decimal.RequireFromString("0.40")) {
		t.Fatalf("reverse combo kalshi price = %s", opps[1].KalshiPrice)
	}
	if !opps[1].PolyPrice.Equal(decimal.RequireFromString("0.45")) {
		t.Fatalf("reverse combo poly price = %s", opps[1].PolyPrice)
	}
}

func TestEvaluateAlignsByNameNotPosition(t *testing.T) {
	// Polymarket lists the subject team second; alignment must follow the
	// canonical name, so the 76ers' 0.38 is still the NO side for BKN.
	pair := pairFor("BKN", price("0.40"), price("0.55"), price("0.62"), price("0.38"))
	pair.Polymarket.Outcomes[0], pair.Polymarket.Outcomes[1] = pair.Polymarket.Outcomes[1], pair.Polymarket.Outcomes[0]

	opps := NewEvaluator(mustDict(t)).Evaluate(pair, decimal.Zero)
	if len(opps) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(opps))
	}
	if !opps[0].PolyPrice.Equal(decimal.RequireFromString("0.38")) {
		t.Fatalf("poly price = %s, want 0.38", opps[0].PolyPrice)
	}
}

func TestEvaluateUnknownTeamCode(t *testing.T) {
	pair := pairFor("LAX", price("0.40"), price("0.55"), price("0.62"), price("0.38"))
	if opps := NewEvaluator(mustDict(t)).Evaluate(pair, decimal.Zero); len(opps) != 0 {
		t.Fatalf("opportunities = %d, want 0", len(opps))
	}
}

func TestEvaluateNoMatchingOutcomeLabel(t *testing.T) {
	pair := pairFor("BKN", price("0.40"), price("0.55"), price("0.62"), price("0.38"))
	pair.Polymarket.Outcomes[0].Label = "Nets"
	if opps := NewEvaluator(mustDict(t)).Evaluate(pair, decimal.Zero); len(opps) != 0 {
		t.Fatalf("opportunities = %d, want 0", len(opps))
	}
}

func TestEvaluateMissingPriceSuppressesCombo(t *testing.T) {
	// No Kalshi YES ask: only the reverse combination can be priced.
	pair := pairFor("BKN", nil, price("0.30"), price("0.40"), price("0.38"))

	opps := NewEvaluator(mustDict(t)).Evaluate(pair, decimal.Zero)
	if len(opps) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(opps))
	}
	if opps[0].Direction != domain.DirYesPolyNoKalshi {
		t.Fatalf("direction = %s", opps[0].Direction)
	}
}

func TestEvaluateThresholdIsStrict(t *testing.T) {
	// Profit of exactly minProfit does not qualify.
	pair := pairFor("BKN", price("0.40"), price("0.90"), price("0.90"), price("0.38"))

	opps := NewEvaluator(mustDict(t)).Evaluate(pair, decimal.RequireFromString("0.22"))
	if len(opps) != 0 {
		t.Fatalf("opportunities = %d, want 0", len(opps))
	}

	opps = NewEvaluator(mustDict(t)).Evaluate(pair, decimal.RequireFromString("0.21"))
	if len(opps) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(opps))
	}
}

func TestEvaluateMirrorsOpponentCombinations(t *testing.T) {
	// The same game quoted from both sides: the 76ers market's NO ask equals
	// the Nets market's YES ask and vice versa. Buying Kalshi YES on one team
	// is the same position as buying its Polymarket outcome against Kalshi NO
	// on the opponent, so the profits must mirror exactly.
	eval := NewEvaluator(mustDict(t))
	floor := decimal.NewFromInt(-1)

	bkn := eval.Evaluate(pairFor("BKN", price("0.40"), price("0.55"), price("0.62"), price("0.38")), floor)
	phi := eval.Evaluate(pairFor("PHI", price("0.55"), price("0.40"), price("0.62"), price("0.38")), floor)

	if len(bkn) != 2 || len(phi) != 2 {
		t.Fatalf("combinations = %d/%d, want 2/2", len(bkn), len(phi))
	}
	if !bkn[0].Profit.Equal(phi[1].Profit) {
		t.Fatalf("bkn yes-kalshi %s != phi yes-poly %s", bkn[0].Profit, phi[1].Profit)
	}
	if !bkn[1].Profit.Equal(phi[0].Profit) {
		t.Fatalf("bkn yes-poly %s != phi yes-kalshi %s", bkn[1].Profit, phi[0].Profit)
	}
}

func TestEvaluateIsRepeatable(t *testing.T) {
	eval := NewEvaluator(mustDict(t))
	pair := pairFor("BKN", price("0.40"), price("0.55"), price("0.62"), price("0.38"))

	first := eval.Evaluate(pair, decimal.Zero)
	second := eval.Evaluate(pair, decimal.Zero)

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Direction != second[i].Direction || !first[i].Profit.Equal(second[i].Profit) {
			t.Fatalf("run %d diverged: %+v vs %+v", i, first[i], second[i])
		}
	}

	// Evaluation must not mutate the pair's quotes.
	if !pair.Kalshi.Outcomes[0].PriceYes.Equal(decimal.RequireFromString("0.40")) {
		t.Fatalf("kalshi yes ask mutated: %s", pair.Kalshi.Outcomes[0].PriceYes)
	}
	if !pair.Polymarket.Outcomes[1].PriceYes.Equal(decimal.RequireFromString("0.38")) {
		t.Fatalf("polymarket price mutated: %s", pair.Polymarket.Outcomes[1].PriceYes)
	}
}

func TestBest(t *testing.T) {
	if Best(nil) != nil {
		t.Fatal("Best(nil) should be nil")
	}
	opps := []domain.Opportunity{
		{Direction: domain.DirYesKalshiNoPoly, Profit: decimal.RequireFromString("0.05")},
		{Direction: domain.DirYesPolyNoKalshi, Profit: decimal.RequireFromString("0.12")},
	}
	best := Best(opps)
	if best == nil || best.Direction != domain.DirYesPolyNoKalshi {
		t.Fatalf("best = %+v", best)
	}
}
