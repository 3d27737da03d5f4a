package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// ArbStore implements domain.ArbStore using PostgreSQL.
type ArbStore struct {
	pool *pgxpool.Pool
}

// NewArbStore creates a new ArbStore backed by the given connection pool.
func NewArbStore(pool *pgxpool.Pool) *ArbStore {
	return &ArbStore{pool: pool}
}

// Insert stores a new arbitrage opportunity.
func (s *ArbStore) Insert(ctx context.Context, opp domain.Opportunity) error {
	const query = `
		INSERT INTO arb_opportunities (
			id, kalshi_ticker, poly_slug, league, team, outcome_label,
			direction, kalshi_price, poly_price, cost, profit, detected_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12
		)`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.KalshiTicker, opp.PolySlug, string(opp.League), opp.Team, opp.OutcomeLabel,
		string(opp.Direction), opp.KalshiPrice.String(), opp.PolyPrice.String(),
		opp.Cost.String(), opp.Profit.String(), opp.DetectedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// ListRecent returns the most recent opportunities ordered by detection time.
func (s *ArbStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	query := `
		SELECT id, kalshi_ticker, poly_slug, league, team, outcome_label,
		       direction, kalshi_price::text, poly_price::text,
		       cost::text, profit::text, detected_at
		FROM arb_opportunities
		ORDER BY detected_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var (
			opp                          domain.Opportunity
			league, direction            string
			kPrice, pPrice, cost, profit string
		)
		if err := rows.Scan(
			&opp.ID, &opp.KalshiTicker, &opp.PolySlug, &league, &opp.Team, &opp.OutcomeLabel,
			&direction, &kPrice, &pPrice, &cost, &profit, &opp.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opp.League = domain.League(league)
		opp.Direction = domain.Direction(direction)
		if opp.KalshiPrice, err = decimal.NewFromString(kPrice); err != nil {
			return nil, fmt.Errorf("postgres: parse kalshi_price %q: %w", kPrice, err)
		}
		if opp.PolyPrice, err = decimal.NewFromString(pPrice); err != nil {
			return nil, fmt.Errorf("postgres: parse poly_price %q: %w", pPrice, err)
		}
		if opp.Cost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("postgres: parse cost %q: %w", cost, err)
		}
		if opp.Profit, err = decimal.NewFromString(profit); err != nil {
			return nil, fmt.Errorf("postgres: parse profit %q: %w", profit, err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities rows: %w", err)
	}
	return opps, nil
}
