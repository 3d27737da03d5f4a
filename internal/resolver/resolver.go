// Package resolver matches Kalshi game markets to their Polymarket
// equivalents. Resolution is two-tiered: a deterministic slug derived from
// the structured ticker is tried first, then a fuzzy free-text search over
// the normalized market title. The resolver is a pure function of its inputs
// plus the injected alias dictionary and venue index; it holds no mutable
// state and is safe for concurrent use.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/alanyoungcy/arbscout/internal/alias"
	"github.com/alanyoungcy/arbscout/internal/domain"
)

// MarketIndex is the Polymarket lookup surface the resolver needs: exact
// lookup by slug and free-text search. Both calls either return a result, a
// definitive miss (domain.ErrNotFound / empty slice), or a transport error.
type MarketIndex interface {
	GetMarketBySlug(ctx context.Context, slug string) (domain.MarketRecord, error)
	SearchMarkets(ctx context.Context, query string) ([]domain.MarketRecord, error)
}

// stopWords are stripped from titles before search: articles, auxiliaries,
// and sport nouns that crowd out the team names in search ranking.
var stopWords = regexp.MustCompile(`(?i)\b(will|the|win|their|professional|football|basketball|hockey|baseball|game|against|on|at|by)\b`)

var punctuation = regexp.MustCompile(`[?.,!:;]`)

// NormalizeTitle strips stop words and punctuation from a market title and
// collapses whitespace, leaving mostly the team names and date.
func NormalizeTitle(title string) string {
	s := stopWords.ReplaceAllString(title, " ")
	s = punctuation.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Resolver derives the Polymarket counterpart of a Kalshi market record.
type Resolver struct {
	index    MarketIndex
	aliases  *alias.Dictionary
	minScore float64
	sim      *metrics.SorensenDice
	logger   *slog.Logger
}

// New creates a Resolver. minScore is the similarity floor a fuzzy-search hit
// must clear before it is accepted; 0 disables the floor and accepts the top
// search result unconditionally.
func New(index MarketIndex, aliases *alias.Dictionary, minScore float64, logger *slog.Logger) *Resolver {
	return &Resolver{
		index:    index,
		aliases:  aliases,
		minScore: minScore,
		sim:      metrics.NewSorensenDice(),
		logger:   logger.With(slog.String("component", "resolver")),
	}
}

// Resolve finds the Polymarket market for the given Kalshi record.
//
// It returns domain.ErrNoMatch when neither tier produces a hit; that is an
// expected terminal outcome, distinct from transport failures, which are
// propagated wrapped so callers can tell "does not exist" from "could not
// check".
func (r *Resolver) Resolve(ctx context.Context, rec domain.MarketRecord) (domain.MatchedPair, error) {
	// Tier 1: deterministic slug lookup.
	slug, err := DeriveSlug(r.aliases, rec.ID)
	if err != nil {
		// Parse failure or dictionary miss falls through to fuzzy search.
		r.logger.DebugContext(ctx, "slug derivation failed",
			slog.String("ticker", rec.ID),
			slog.String("error", err.Error()),
		)
	} else {
		match, err := r.index.GetMarketBySlug(ctx, slug)
		switch {
		case err == nil:
			return domain.MatchedPair{
				Kalshi:     rec,
				Polymarket: match,
				Confidence: domain.MatchDeterministic,
			}, nil
		case errors.Is(err, domain.ErrNotFound):
			r.logger.DebugContext(ctx, "derived slug has no market",
				slog.String("ticker", rec.ID),
				slog.String("slug", slug),
			)
		default:
			return domain.MatchedPair{}, fmt.Errorf("resolver: slug lookup %s: %w", slug, err)
		}
	}

	// Tier 2: fuzzy title search.
	query := NormalizeTitle(rec.Title)
	if query == "" {
		return domain.MatchedPair{}, fmt.Errorf("resolver: ticker %s: empty title: %w", rec.ID, domain.ErrNoMatch)
	}

	candidates, err := r.index.SearchMarkets(ctx, query)
	if err != nil {
		return domain.MatchedPair{}, fmt.Errorf("resolver: search %q: %w", query, err)
	}
	if len(candidates) == 0 {
		return domain.MatchedPair{}, fmt.Errorf("resolver: ticker %s: %w", rec.ID, domain.ErrNoMatch)
	}

	top := candidates[0]
	score := strutil.Similarity(query, NormalizeTitle(top.Title), r.sim)
	if r.minScore > 0 && score < r.minScore {
		r.logger.InfoContext(ctx, "top search result below similarity floor",
			slog.String("ticker", rec.ID),
			slog.String("candidate", top.ID),
			slog.Float64("score", score),
			slog.Float64("min_score", r.minScore),
		)
		return domain.MatchedPair{}, fmt.Errorf("resolver: ticker %s: best score %.2f below floor: %w", rec.ID, score, domain.ErrNoMatch)
	}

	return domain.MatchedPair{
		Kalshi:     rec,
		Polymarket: top,
		Confidence: domain.MatchFuzzySearch,
		MatchScore: score,
	}, nil
}
