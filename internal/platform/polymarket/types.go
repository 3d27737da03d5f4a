package polymarket

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as a bool or a string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// stringArray unmarshals Gamma's doubly-encoded arrays: fields like
// "outcomes" arrive either as a JSON array or as a JSON string containing
// one, e.g. "[\"Yes\",\"No\"]".
type stringArray []string

func (a *stringArray) UnmarshalJSON(data []byte) error {
	var direct []string
	if err := json.Unmarshal(data, &direct); err == nil {
		*a = direct
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	return json.Unmarshal([]byte(encoded), (*[]string)(a))
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID            string      `json:"id"`
	Question      string      `json:"question"`
	Slug          string      `json:"slug"`
	Active        flexBool    `json:"active"`
	Closed        bool        `json:"closed"`
	Outcomes      stringArray `json:"outcomes"`
	OutcomePrices stringArray `json:"outcomePrices"`
	Volume        string      `json:"volume"`
	EndDateISO    string      `json:"end_date_iso"`
	GameStartTime string      `json:"game_start_time"`
}

// APIEvent represents a Gamma search result event, grouping one or more
// markets (moneyline plus strike lines for a game).
type APIEvent struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Slug    string      `json:"slug"`
	Markets []APIMarket `json:"markets"`
}

// Record converts the API market into the venue-agnostic snapshot. It fails
// when the market is not a two-outcome binary market or a price does not
// parse; prices are kept as exact decimals.
func (m APIMarket) Record() (domain.MarketRecord, error) {
	if len(m.Outcomes) != 2 || len(m.OutcomePrices) != 2 {
		return domain.MarketRecord{}, fmt.Errorf("polymarket: market %s: want 2 outcomes, got %d with %d prices",
			m.Slug, len(m.Outcomes), len(m.OutcomePrices))
	}

	league, _ := domain.LeagueFromIdentifier(m.Slug)

	rec := domain.MarketRecord{
		Venue:  domain.VenuePolymarket,
		ID:     m.Slug,
		League: league,
		Title:  m.Question,
	}
	for i := 0; i < 2; i++ {
		price, err := decimal.NewFromString(m.OutcomePrices[i])
		if err != nil {
			return domain.MarketRecord{}, fmt.Errorf("polymarket: market %s: bad price %q: %w", m.Slug, m.OutcomePrices[i], err)
		}
		p := price
		rec.Outcomes[i] = domain.Outcome{Label: m.Outcomes[i], PriceYes: &p}
	}
	return rec, nil
}
