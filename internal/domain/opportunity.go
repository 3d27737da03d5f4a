package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction names which leg is bought on which venue.
type Direction string

const (
	// DirYesKalshiNoPoly buys YES on Kalshi for the subject team and the
	// opposing Polymarket outcome.
	DirYesKalshiNoPoly Direction = "yes_kalshi_no_polymarket"
	// DirYesPolyNoKalshi buys the subject team's Polymarket outcome and NO
	// on Kalshi.
	DirYesPolyNoKalshi Direction = "yes_polymarket_no_kalshi"
)

// Opportunity is one riskless-arbitrage combination: a pair of opposing
// positions across venues whose combined cost is below the $1 payout.
//
// The evaluator fills the pricing fields and leaves ID and DetectedAt zero so
// evaluation stays a pure function of its inputs; ArbService assigns them
// when an opportunity is recorded.
type Opportunity struct {
	ID           string          `json:"id,omitempty"`
	KalshiTicker string          `json:"kalshi_ticker"`
	PolySlug     string          `json:"polymarket_slug"`
	League       League          `json:"league"`
	Team         string          `json:"team"`          // Kalshi team code
	OutcomeLabel string          `json:"outcome_label"` // canonical team name on Polymarket
	Direction    Direction       `json:"direction"`
	KalshiPrice  decimal.Decimal `json:"kalshi_price"`
	PolyPrice    decimal.Decimal `json:"polymarket_price"`
	Cost         decimal.Decimal `json:"cost"`
	Profit       decimal.Decimal `json:"profit"`
	DetectedAt   time.Time       `json:"detected_at,omitzero"`
}

// ScanReport aggregates the outcome of one batch scan across all configured
// series. Per-market failures are isolated: a market that cannot be resolved
// or evaluated is counted here instead of aborting the batch.
type ScanReport struct {
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Series        []string      `json:"series"`
	Scanned       int           `json:"scanned"`
	Matched       int           `json:"matched"`
	NoMatch       int           `json:"no_match"`
	Failed        int           `json:"failed"`
	Opportunities []Opportunity `json:"opportunities"`
}
