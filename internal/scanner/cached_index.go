package scanner

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alanyoungcy/arbscout/internal/domain"
	"github.com/alanyoungcy/arbscout/internal/resolver"
)

// CachedIndex is a read-through cache over a market index. Slug lookups
// inside the cache TTL are served without touching the venue; search always
// goes to the venue but back-fills the cache with the returned records.
type CachedIndex struct {
	inner  resolver.MarketIndex
	cache  domain.RecordCache
	logger *slog.Logger
}

// NewCachedIndex wraps inner with the given record cache.
func NewCachedIndex(inner resolver.MarketIndex, cache domain.RecordCache, logger *slog.Logger) *CachedIndex {
	return &CachedIndex{
		inner:  inner,
		cache:  cache,
		logger: logger.With(slog.String("component", "cached_index")),
	}
}

// GetMarketBySlug serves from the cache when possible and back-fills it on a
// venue hit. Cache failures degrade to direct venue lookups.
func (c *CachedIndex) GetMarketBySlug(ctx context.Context, slug string) (domain.MarketRecord, error) {
	rec, err := c.cache.Get(ctx, domain.VenuePolymarket, slug)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		c.logger.WarnContext(ctx, "cache get failed",
			slog.String("slug", slug),
			slog.String("error", err.Error()),
		)
	}

	rec, err = c.inner.GetMarketBySlug(ctx, slug)
	if err != nil {
		return domain.MarketRecord{}, err
	}

	if cacheErr := c.cache.Set(ctx, rec); cacheErr != nil {
		c.logger.WarnContext(ctx, "cache set failed",
			slog.String("slug", slug),
			slog.String("error", cacheErr.Error()),
		)
	}
	return rec, nil
}

// SearchMarkets queries the venue and back-fills the cache with every
// returned record.
func (c *CachedIndex) SearchMarkets(ctx context.Context, query string) ([]domain.MarketRecord, error) {
	records, err := c.inner.SearchMarkets(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if cacheErr := c.cache.Set(ctx, rec); cacheErr != nil {
			c.logger.WarnContext(ctx, "cache set failed",
				slog.String("slug", rec.ID),
				slog.String("error", cacheErr.Error()),
			)
			break
		}
	}
	return records, nil
}
