// Package alias holds the bidirectional team-name translation table used to
// map Kalshi team codes to Polymarket slug abbreviations and canonical team
// names. The dictionary is loaded once, is immutable afterwards, and is
// injected into the resolver and evaluator at construction.
package alias

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

//go:embed teams.json
var defaultTeams []byte

// Entry is one team's translation record.
type Entry struct {
	// Name is the canonical team name as Polymarket labels its outcomes,
	// e.g. "Brooklyn Nets".
	Name string `json:"name"`
	// PolyAbbr is the lowercase abbreviation Polymarket embeds in slugs.
	PolyAbbr string `json:"poly_abbr"`
}

// Dictionary maps (league, Kalshi team code) to Entry, with a reverse index
// from canonical name back to code. Lookups are case-insensitive on the code.
type Dictionary struct {
	byCode map[domain.League]map[string]Entry
	byName map[domain.League]map[string]string
}

// rawDict is the on-disk shape: {"NBA": {"BKN": {"name": ..., "poly_abbr": ...}}}.
type rawDict map[string]map[string]Entry

// Load reads a dictionary from the JSON file at path.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("alias: read %s: %w", path, err)
	}
	d, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("alias: parse %s: %w", path, err)
	}
	return d, nil
}

// Default returns the dictionary embedded in the binary, covering the NBA,
// NFL, NHL, and MLB.
func Default() (*Dictionary, error) {
	d, err := parse(defaultTeams)
	if err != nil {
		return nil, fmt.Errorf("alias: parse embedded dictionary: %w", err)
	}
	return d, nil
}

func parse(data []byte) (*Dictionary, error) {
	var raw rawDict
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	d := &Dictionary{
		byCode: make(map[domain.League]map[string]Entry, len(raw)),
		byName: make(map[domain.League]map[string]string, len(raw)),
	}
	for leagueKey, teams := range raw {
		league := domain.League(strings.ToLower(leagueKey))
		codes := make(map[string]Entry, len(teams))
		names := make(map[string]string, len(teams))
		for code, entry := range teams {
			code = strings.ToUpper(code)
			if entry.Name == "" || entry.PolyAbbr == "" {
				return nil, fmt.Errorf("league %s team %s: name and poly_abbr are required", leagueKey, code)
			}
			if _, dup := codes[code]; dup {
				return nil, fmt.Errorf("league %s: duplicate team code %s", leagueKey, code)
			}
			codes[code] = entry
			names[entry.Name] = code
		}
		d.byCode[league] = codes
		d.byName[league] = names
	}
	return d, nil
}

// ByCode looks up a team by its Kalshi code within a league.
func (d *Dictionary) ByCode(league domain.League, code string) (Entry, bool) {
	e, ok := d.byCode[league][strings.ToUpper(code)]
	return e, ok
}

// CodeForName is the reverse lookup from canonical name to Kalshi code.
func (d *Dictionary) CodeForName(league domain.League, name string) (string, bool) {
	code, ok := d.byName[league][name]
	return code, ok
}

// Leagues returns the leagues present in the dictionary.
func (d *Dictionary) Leagues() []domain.League {
	out := make([]domain.League, 0, len(d.byCode))
	for l := range d.byCode {
		out = append(out, l)
	}
	return out
}
