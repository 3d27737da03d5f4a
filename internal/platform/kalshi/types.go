package kalshi

import (
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// Market represents a market as returned by the Kalshi REST API. Prices are
// integer cents (1-99); zero means the book has no resting ask or bid at
// that side.
type Market struct {
	Ticker       string `json:"ticker"`
	EventTicker  string `json:"event_ticker"`
	Title        string `json:"title"`
	Subtitle     string `json:"subtitle"`
	Status       string `json:"status"` // "open", "closed", "settled"
	YesBid       int64  `json:"yes_bid"`
	YesAsk       int64  `json:"yes_ask"`
	NoBid        int64  `json:"no_bid"`
	NoAsk        int64  `json:"no_ask"`
	LastPrice    int64  `json:"last_price"`
	Volume       int64  `json:"volume"`
	Volume24H    int64  `json:"volume_24h"`
	OpenInterest int64  `json:"open_interest"`
	Category     string `json:"category"`
	OpenTime     string `json:"open_time"`
	CloseTime    string `json:"close_time"`
	Result       string `json:"result"` // "yes", "no", "" (unsettled)
}

// ErrorResponse represents a Kalshi API error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// dollars converts a cent price to exact decimal dollars. A zero cent price
// means no ask is resting, which maps to an absent price, not a free claim.
func dollars(cents int64) *decimal.Decimal {
	if cents <= 0 {
		return nil
	}
	d := decimal.New(cents, -2)
	return &d
}

// Record converts the API market into the venue-agnostic snapshot for the
// given league and subject team code. Outcomes[0] carries the YES ask keyed
// by the subject team; Outcomes[1] carries the NO ask.
func (m Market) Record(league domain.League, subject string) domain.MarketRecord {
	return domain.MarketRecord{
		Venue:  domain.VenueKalshi,
		ID:     m.Ticker,
		League: league,
		Title:  m.Title,
		Outcomes: [2]domain.Outcome{
			{Label: subject, PriceYes: dollars(m.YesAsk)},
			{Label: "no", PriceYes: dollars(m.NoAsk)},
		},
	}
}
