package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// MatchStore implements domain.MatchStore using PostgreSQL. Each matched pair
// spans three tables: the two venue snapshot tables plus the match map row
// joining them.
type MatchStore struct {
	pool *pgxpool.Pool
}

// NewMatchStore creates a new MatchStore backed by the given connection pool.
func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

// UpsertPair writes both venue snapshots and the match map row in one
// transaction, replacing any previous snapshot for the same identifiers.
func (s *MatchStore) UpsertPair(ctx context.Context, pair domain.MatchedPair, best *domain.Opportunity) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin upsert pair: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const upsertKalshi = `
		INSERT INTO kalshi_markets (ticker, league, title, team_code, yes_ask, no_ask, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (ticker) DO UPDATE SET
			league     = EXCLUDED.league,
			title      = EXCLUDED.title,
			team_code  = EXCLUDED.team_code,
			yes_ask    = EXCLUDED.yes_ask,
			no_ask     = EXCLUDED.no_ask,
			updated_at = NOW()`
	k := pair.Kalshi
	if _, err := tx.Exec(ctx, upsertKalshi,
		k.ID, string(k.League), k.Title, k.Outcomes[0].Label,
		numArg(k.Outcomes[0].PriceYes), numArg(k.Outcomes[1].PriceYes),
	); err != nil {
		return fmt.Errorf("postgres: upsert kalshi market %s: %w", k.ID, err)
	}

	const upsertPoly = `
		INSERT INTO polymarket_markets (slug, league, title, outcome_a, price_a, outcome_b, price_b, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (slug) DO UPDATE SET
			league     = EXCLUDED.league,
			title      = EXCLUDED.title,
			outcome_a  = EXCLUDED.outcome_a,
			price_a    = EXCLUDED.price_a,
			outcome_b  = EXCLUDED.outcome_b,
			price_b    = EXCLUDED.price_b,
			updated_at = NOW()`
	p := pair.Polymarket
	if _, err := tx.Exec(ctx, upsertPoly,
		p.ID, string(p.League), p.Title,
		p.Outcomes[0].Label, numArg(p.Outcomes[0].PriceYes),
		p.Outcomes[1].Label, numArg(p.Outcomes[1].PriceYes),
	); err != nil {
		return fmt.Errorf("postgres: upsert polymarket market %s: %w", p.ID, err)
	}

	bestProfit := "0"
	bestDirection := ""
	if best != nil {
		bestProfit = best.Profit.String()
		bestDirection = string(best.Direction)
	}
	const upsertMatch = `
		INSERT INTO market_match_map (kalshi_ticker, poly_slug, confidence, match_score, best_profit, best_direction, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (kalshi_ticker) DO UPDATE SET
			poly_slug      = EXCLUDED.poly_slug,
			confidence     = EXCLUDED.confidence,
			match_score    = EXCLUDED.match_score,
			best_profit    = EXCLUDED.best_profit,
			best_direction = EXCLUDED.best_direction,
			last_updated   = NOW()`
	if _, err := tx.Exec(ctx, upsertMatch,
		k.ID, p.ID, string(pair.Confidence), pair.MatchScore, bestProfit, bestDirection,
	); err != nil {
		return fmt.Errorf("postgres: upsert match %s -> %s: %w", k.ID, p.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit upsert pair: %w", err)
	}
	return nil
}

// ListMatches returns the most recently updated matches up to limit.
func (s *MatchStore) ListMatches(ctx context.Context, limit int) ([]domain.StoredMatch, error) {
	query := `
		SELECT m.kalshi_ticker, k.league, k.title, k.team_code,
		       k.yes_ask::text, k.no_ask::text,
		       m.poly_slug, p.league, p.title,
		       p.outcome_a, p.price_a::text, p.outcome_b, p.price_b::text,
		       m.confidence, m.match_score,
		       m.best_profit::text, m.best_direction, m.last_updated
		FROM market_match_map m
		JOIN kalshi_markets k ON k.ticker = m.kalshi_ticker
		JOIN polymarket_markets p ON p.slug = m.poly_slug
		ORDER BY m.last_updated DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.StoredMatch
	for rows.Next() {
		var (
			m                          domain.StoredMatch
			kLeague, pLeague           string
			teamCode                   string
			yesAsk, noAsk              *string
			outA, outB                 string
			priceA, priceB, bestProfit *string
		)
		if err := rows.Scan(
			&m.Pair.Kalshi.ID, &kLeague, &m.Pair.Kalshi.Title, &teamCode,
			&yesAsk, &noAsk,
			&m.Pair.Polymarket.ID, &pLeague, &m.Pair.Polymarket.Title,
			&outA, &priceA, &outB, &priceB,
			&m.Pair.Confidence, &m.Pair.MatchScore,
			&bestProfit, &m.Direction, &m.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan match: %w", err)
		}

		m.Pair.Kalshi.Venue = domain.VenueKalshi
		m.Pair.Kalshi.League = domain.League(kLeague)
		m.Pair.Kalshi.Outcomes[0] = domain.Outcome{Label: teamCode, PriceYes: numVal(yesAsk)}
		m.Pair.Kalshi.Outcomes[1] = domain.Outcome{Label: "no", PriceYes: numVal(noAsk)}

		m.Pair.Polymarket.Venue = domain.VenuePolymarket
		m.Pair.Polymarket.League = domain.League(pLeague)
		m.Pair.Polymarket.Outcomes[0] = domain.Outcome{Label: outA, PriceYes: numVal(priceA)}
		m.Pair.Polymarket.Outcomes[1] = domain.Outcome{Label: outB, PriceYes: numVal(priceB)}

		if bestProfit != nil {
			d, err := decimal.NewFromString(*bestProfit)
			if err != nil {
				return nil, fmt.Errorf("postgres: parse best_profit %q: %w", *bestProfit, err)
			}
			m.BestProfit = d
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list matches rows: %w", err)
	}
	return matches, nil
}

// OldestUpdate returns the oldest last_updated across the match map.
func (s *MatchStore) OldestUpdate(ctx context.Context) (time.Time, error) {
	var oldest *time.Time
	err := s.pool.QueryRow(ctx, "SELECT MIN(last_updated) FROM market_match_map").Scan(&oldest)
	if err != nil {
		return time.Time{}, fmt.Errorf("postgres: oldest match update: %w", err)
	}
	if oldest == nil {
		return time.Time{}, domain.ErrNotFound
	}
	return *oldest, nil
}

// numArg renders an optional price for a NUMERIC column parameter.
func numArg(p *decimal.Decimal) any {
	if p == nil {
		return nil
	}
	return p.String()
}

// numVal parses a NUMERIC column selected as text back into an optional
// price.
func numVal(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil
	}
	return &d
}
