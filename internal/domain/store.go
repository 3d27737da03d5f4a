package domain

import (
	"context"
	"io"
	"time"
)

// MatchStore persists matched pairs and their per-pair best arbitrage result.
type MatchStore interface {
	// UpsertPair writes both venue snapshots and the match map row for the
	// pair, replacing any previous snapshot for the same identifiers.
	UpsertPair(ctx context.Context, pair MatchedPair, best *Opportunity) error
	// ListMatches returns the most recently updated matches up to limit.
	ListMatches(ctx context.Context, limit int) ([]StoredMatch, error)
	// OldestUpdate returns the oldest last_updated across the match map, or
	// ErrNotFound when no matches are stored.
	OldestUpdate(ctx context.Context) (time.Time, error)
}

// ArbStore persists detected arbitrage opportunities.
type ArbStore interface {
	Insert(ctx context.Context, opp Opportunity) error
	// ListRecent returns the most recent opportunities up to limit, newest
	// first.
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
}

// RecordCache is a short-lived snapshot cache for venue market records, used
// to avoid re-fetching prices inside the staleness window.
type RecordCache interface {
	Set(ctx context.Context, rec MarketRecord) error
	// Get returns ErrNotFound when the record is absent or expired.
	Get(ctx context.Context, venue Venue, id string) (MarketRecord, error)
}

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// ReportArchiver stores scan reports in cold storage and returns the object
// path they were written to.
type ReportArchiver interface {
	ArchiveReport(ctx context.Context, report ScanReport) (string, error)
}
