// Package cache keeps computed census reports in redis so the hourly
// replay is not recomputed on every dashboard refresh.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"patient-journey/internal/models"
)

const (
	versionKey = "census:version"
	reportTTL  = 6 * time.Hour
)

// CensusCache versions cached reports: every ingest or clear bumps the
// version, which orphans all reports computed against the old data. The
// orphans expire on their own TTL.
type CensusCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewCensusCache(rdb *redis.Client, logger *zap.Logger) *CensusCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CensusCache{rdb: rdb, logger: logger}
}

// Get returns the cached report for the range, or nil on a miss. Redis
// failures degrade to a miss.
func (c *CensusCache) Get(ctx context.Context, start, end string) *models.CensusReport {
	key, err := c.reportKey(ctx, start, end)
	if err != nil {
		return nil
	}
	payload, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("census cache read failed", zap.Error(err))
		}
		return nil
	}
	var report models.CensusReport
	if err := json.Unmarshal(payload, &report); err != nil {
		c.logger.Warn("census cache entry corrupt", zap.String("key", key))
		return nil
	}
	return &report
}

// Set stores the report under the current data version.
func (c *CensusCache) Set(ctx context.Context, start, end string, report *models.CensusReport) {
	key, err := c.reportKey(ctx, start, end)
	if err != nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, payload, reportTTL).Err(); err != nil {
		c.logger.Warn("census cache write failed", zap.Error(err))
	}
}

// Invalidate bumps the data version after an ingest or a purge.
func (c *CensusCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, versionKey).Err(); err != nil {
		c.logger.Warn("census cache invalidation failed", zap.Error(err))
	}
}

func (c *CensusCache) reportKey(ctx context.Context, start, end string) (string, error) {
	version, err := c.rdb.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("census:report:v%d:%s:%s", version, start, end), nil
}
