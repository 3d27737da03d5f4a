package alias

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

func TestDefaultDictionary(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	if got := len(d.Leagues()); got != 4 {
		t.Fatalf("leagues = %d, want 4", got)
	}

	entry, ok := d.ByCode(domain.LeagueNBA, "BKN")
	if !ok {
		t.Fatal("BKN missing from nba")
	}
	if entry.Name != "Brooklyn Nets" || entry.PolyAbbr != "bkn" {
		t.Fatalf("BKN entry = %+v", entry)
	}

	// Code lookup is case-insensitive.
	if _, ok := d.ByCode(domain.LeagueNHL, "uta"); !ok {
		t.Fatal("lowercase code lookup failed")
	}

	code, ok := d.CodeForName(domain.LeagueNBA, "Brooklyn Nets")
	if !ok || code != "BKN" {
		t.Fatalf("CodeForName = %q, %v", code, ok)
	}
}

func TestByCodeUnknown(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if _, ok := d.ByCode(domain.LeagueNBA, "LAX"); ok {
		t.Fatal("LAX should not resolve in nba")
	}
	// Codes do not leak across leagues.
	if _, ok := d.ByCode(domain.LeagueMLB, "BKN"); ok {
		t.Fatal("BKN should not resolve in mlb")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teams.json")
	content := `{"nba": {"tst": {"name": "Test City", "poly_abbr": "tst"}}}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// League keys lowercase, codes uppercase regardless of file casing.
	if _, ok := d.ByCode(domain.LeagueNBA, "TST"); !ok {
		t.Fatal("TST missing after load")
	}
}

func TestParseRejectsIncompleteEntry(t *testing.T) {
	if _, err := parse([]byte(`{"nba": {"bkn": {"name": "Brooklyn Nets"}}}`)); err == nil {
		t.Fatal("want error for entry without poly_abbr")
	}
}
