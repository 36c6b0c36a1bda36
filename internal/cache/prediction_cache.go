// Package cache memoizes finished risk reports per student for a short
// window, so repeated lookups within the TTL return the identical report.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edupulse/dropout-risk-api/internal/dto"
)

const keyPrefix = "prediction:student:"

// DefaultTTL is the freshness window for cached reports.
const DefaultTTL = 300 * time.Second

// PredictionCache stores risk reports in Redis with a fixed TTL. Expiry is
// enforced by Redis itself: a read after the TTL simply misses. Failed
// predictions are never stored.
type PredictionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New builds a prediction cache. A zero ttl falls back to DefaultTTL.
func New(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *PredictionCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &PredictionCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "prediction_cache").Logger(),
	}
}

// TTL returns the configured freshness window.
func (c *PredictionCache) TTL() time.Duration { return c.ttl }

// Get returns the cached report for a roll number. A hit comes back marked
// with FromCache=true but otherwise identical to what was stored.
func (c *PredictionCache) Get(ctx context.Context, rollNo string) (dto.RiskReport, bool) {
	if c.client == nil {
		return dto.RiskReport{}, false
	}

	payload, err := c.client.Get(ctx, keyPrefix+rollNo).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("roll_no", rollNo).Msg("cache read failed")
		}
		return dto.RiskReport{}, false
	}

	var report dto.RiskReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		c.logger.Warn().Err(err).Str("roll_no", rollNo).Msg("cached report unreadable, evicting")
		c.client.Del(ctx, keyPrefix+rollNo)
		return dto.RiskReport{}, false
	}

	report.FromCache = true
	return report, true
}

// Put stores a report under the roll number for the TTL window.
func (c *PredictionCache) Put(ctx context.Context, rollNo string, report dto.RiskReport) {
	if c.client == nil {
		return
	}

	report.FromCache = false
	payload, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn().Err(err).Str("roll_no", rollNo).Msg("failed to encode report for caching")
		return
	}

	if err := c.client.Set(ctx, keyPrefix+rollNo, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("roll_no", rollNo).Msg("cache write failed")
	}
}

// Clear evicts the cached report for one roll number.
func (c *PredictionCache) Clear(ctx context.Context, rollNo string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keyPrefix+rollNo).Err()
}

// ClearAll evicts every cached report and returns how many were removed.
func (c *PredictionCache) ClearAll(ctx context.Context) (int64, error) {
	if c.client == nil {
		return 0, nil
	}

	var removed int64
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}

// Size counts the currently cached reports.
func (c *PredictionCache) Size(ctx context.Context) int64 {
	if c.client == nil {
		return 0
	}

	var count int64
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	return count
}
