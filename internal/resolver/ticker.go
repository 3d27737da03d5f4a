package resolver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alanyoungcy/arbscout/internal/alias"
	"github.com/alanyoungcy/arbscout/internal/domain"
)

// gameBlockRe matches the structured block Kalshi embeds in game tickers:
// 2-digit year, 3-letter month, 2-digit day, 3-letter away code, 3-letter
// home code, e.g. "25dec23bknphi" inside "KXNBAGAME-25DEC23BKNPHI".
var gameBlockRe = regexp.MustCompile(`(\d{2})([a-z]{3})(\d{2})([a-z]{3})([a-z]{3})`)

// months maps Kalshi month abbreviations to calendar month numbers. A token
// outside this table is a parse failure, never a default.
var months = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"may": "05", "jun": "06", "jul": "07", "aug": "08",
	"sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

// Ticker is the decomposed form of a team-vs-team game ticker.
type Ticker struct {
	League domain.League
	Away   string // Kalshi team code, upper case
	Home   string
	// Subject is the team this market's YES refers to: the trailing ticker
	// segment when present ("...-25DEC23BKNPHI-PHI"), the home team
	// otherwise.
	Subject string
	// Date is the game date in ISO form, e.g. "2025-12-23".
	Date string
}

// ParseTicker decomposes a Kalshi game ticker. It returns an error wrapping
// domain.ErrUnparseableTicker when the ticker lacks a league token, the
// structured date/teams block, or a recognized month abbreviation.
func ParseTicker(ticker string) (Ticker, error) {
	league, ok := domain.LeagueFromIdentifier(ticker)
	if !ok {
		return Ticker{}, fmt.Errorf("ticker %q: no league token: %w", ticker, domain.ErrUnparseableTicker)
	}

	m := gameBlockRe.FindStringSubmatch(strings.ToLower(ticker))
	if m == nil {
		return Ticker{}, fmt.Errorf("ticker %q: no game block: %w", ticker, domain.ErrUnparseableTicker)
	}
	yy, mon, day, away, home := m[1], m[2], m[3], m[4], m[5]

	monthNum, ok := months[mon]
	if !ok {
		return Ticker{}, fmt.Errorf("ticker %q: unknown month %q: %w", ticker, mon, domain.ErrUnparseableTicker)
	}

	t := Ticker{
		League: league,
		Away:   strings.ToUpper(away),
		Home:   strings.ToUpper(home),
		Date:   fmt.Sprintf("20%s-%s-%s", yy, monthNum, day),
	}

	// Team markets carry the subject code as a trailing segment.
	segs := strings.Split(strings.ToUpper(ticker), "-")
	t.Subject = t.Home
	if last := segs[len(segs)-1]; last == t.Away || last == t.Home {
		t.Subject = last
	}
	return t, nil
}

// DeriveSlug deterministically translates a Kalshi game ticker into the
// Polymarket slug form <league>-<away>-<home>-<ISO date>, e.g.
// "nba-bkn-phi-2025-12-23". A team code missing from the dictionary is
// reported as domain.ErrUnknownTeam, not a panic or a malformed slug.
func DeriveSlug(aliases *alias.Dictionary, ticker string) (string, error) {
	t, err := ParseTicker(ticker)
	if err != nil {
		return "", err
	}

	away, ok := aliases.ByCode(t.League, t.Away)
	if !ok {
		return "", fmt.Errorf("ticker %q: away code %s (%s): %w", ticker, t.Away, t.League, domain.ErrUnknownTeam)
	}
	home, ok := aliases.ByCode(t.League, t.Home)
	if !ok {
		return "", fmt.Errorf("ticker %q: home code %s (%s): %w", ticker, t.Home, t.League, domain.ErrUnknownTeam)
	}

	return fmt.Sprintf("%s-%s-%s-%s", t.League, away.PolyAbbr, home.PolyAbbr, t.Date), nil
}
