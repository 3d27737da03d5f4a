package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// RecordCache implements domain.RecordCache using Redis string values with
// JSON-serialized market records. Expiry doubles as the staleness window: an
// expired record reads as absent and forces a venue re-fetch.
//
// Key schema:
//
//	record:{venue}:{id} - JSON-encoded domain.MarketRecord
type RecordCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRecordCache creates a RecordCache backed by the given Client. Records
// expire after ttl.
func NewRecordCache(c *Client, ttl time.Duration) *RecordCache {
	return &RecordCache{rdb: c.rdb, ttl: ttl}
}

func recordKey(venue domain.Venue, id string) string {
	return fmt.Sprintf("record:%s:%s", venue, id)
}

// Set stores a market record with the cache TTL.
func (rc *RecordCache) Set(ctx context.Context, rec domain.MarketRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis: marshal record %s: %w", rec.ID, err)
	}
	if err := rc.rdb.Set(ctx, recordKey(rec.Venue, rec.ID), data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set record %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a market record. It returns domain.ErrNotFound when the key
// does not exist or has expired.
func (rc *RecordCache) Get(ctx context.Context, venue domain.Venue, id string) (domain.MarketRecord, error) {
	data, err := rc.rdb.Get(ctx, recordKey(venue, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.MarketRecord{}, domain.ErrNotFound
		}
		return domain.MarketRecord{}, fmt.Errorf("redis: get record %s: %w", id, err)
	}

	var rec domain.MarketRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.MarketRecord{}, fmt.Errorf("redis: unmarshal record %s: %w", id, err)
	}
	return rec, nil
}
