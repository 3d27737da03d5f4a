package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Venue identifies which prediction-market venue a record came from.
type Venue string

const (
	VenueKalshi     Venue = "kalshi"
	VenuePolymarket Venue = "polymarket"
)

// League identifies the sports league a market belongs to.
type League string

const (
	LeagueNBA League = "nba"
	LeagueNFL League = "nfl"
	LeagueNHL League = "nhl"
	LeagueMLB League = "mlb"
)

// leagueTokens are the substrings embedded in venue identifiers. Kalshi
// series tickers ("KXNBAGAME") and Polymarket slugs ("nba-bkn-phi-...") both
// carry one of them.
var leagueTokens = []League{LeagueNBA, LeagueNFL, LeagueNHL, LeagueMLB}

// LeagueFromIdentifier scans identifier for a known league token. The second
// return is false when no token is present.
func LeagueFromIdentifier(identifier string) (League, bool) {
	id := strings.ToLower(identifier)
	for _, l := range leagueTokens {
		if strings.Contains(id, string(l)) {
			return l, true
		}
	}
	return "", false
}

// Outcome is one side of a binary market. PriceYes is the current cost of a
// claim paying $1 if the outcome occurs; nil means the venue is not quoting
// an ask for it. Prices are decimal so sub-cent edges stay exact.
type Outcome struct {
	Label    string           `json:"label"`
	PriceYes *decimal.Decimal `json:"price_yes,omitempty"`
}

// MarketRecord is a venue-agnostic snapshot of one binary market.
//
// For Kalshi game markets, Outcomes[0] is the subject team: its label is the
// team code and its PriceYes is the YES ask. Outcomes[1].PriceYes is the NO
// ask, the cost of the claim paying when the subject team loses. The two
// asks are independent quotes and need not sum to 1.
//
// For Polymarket, the outcomes are the event's two team labels with their
// listed prices, complementary by construction of the binary market.
type MarketRecord struct {
	Venue    Venue      `json:"venue"`
	ID       string     `json:"id"` // Kalshi ticker or Polymarket slug
	League   League     `json:"league"`
	Title    string     `json:"title"`
	Outcomes [2]Outcome `json:"outcomes"`
}

// MatchConfidence records which resolution tier produced a match.
type MatchConfidence string

const (
	MatchDeterministic MatchConfidence = "deterministic"
	MatchFuzzySearch   MatchConfidence = "fuzzy_search"
)

// MatchedPair is a Kalshi market paired with its Polymarket equivalent. It is
// produced per resolution attempt and handed straight to the evaluator;
// keeping it around is the store layer's concern.
type MatchedPair struct {
	Kalshi     MarketRecord    `json:"kalshi"`
	Polymarket MarketRecord    `json:"polymarket"`
	Confidence MatchConfidence `json:"confidence"`
	// MatchScore is the title similarity of a fuzzy match, 0 for deterministic.
	MatchScore float64 `json:"match_score,omitempty"`
}

// StoredMatch is a persisted MatchedPair with bookkeeping fields, as read
// back from the match map table.
type StoredMatch struct {
	Pair        MatchedPair     `json:"pair"`
	BestProfit  decimal.Decimal `json:"best_profit"`
	Direction   string          `json:"direction,omitempty"`
	LastUpdated time.Time       `json:"last_updated"`
}
