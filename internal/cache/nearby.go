package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/metrics"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"github.com/mmcloughlin/geohash"
	"github.com/redis/go-redis/v9"
)

const (
	NearbyKeyPrefix = "cafes:nearby:"
	nearbyPattern   = NearbyKeyPrefix + "*"

	// ~38m x 19m cells, close enough that neighbouring queries share an entry
	geohashPrecision = 8
	scanBatch        = 100
)

// NearbyCache 주변 카페 검색 결과 캐시 (평점 변경 시 전체 무효화)
type NearbyCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewNearbyCache returns a cache backed by client. A nil client disables caching.
func NewNearbyCache(client redis.UniversalClient, ttl time.Duration) *NearbyCache {
	return &NearbyCache{client: client, ttl: ttl}
}

// Key normalizes the query point to a precision-8 geohash cell (about 38m x 19m).
// This approximates an exact (lat, lng, radius) key: query points in the same cell
// share one catalog result set, and callers recompute distances from their own point.
func (c *NearbyCache) Key(lat, lng, radiusKm float64) string {
	return fmt.Sprintf("%s%s:%s", NearbyKeyPrefix,
		geohash.EncodeWithPrecision(lat, lng, geohashPrecision),
		strconv.FormatFloat(radiusKm, 'f', -1, 64))
}

// Get returns the cached cafe rows. Redis failures are reported as a miss.
func (c *NearbyCache) Get(ctx context.Context, lat, lng, radiusKm float64) ([]model.Cafe, bool) {
	if c.client == nil {
		return nil, false
	}
	key := c.Key(lat, lng, radiusKm)

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ObserveCache("nearby", "miss")
		return nil, false
	}
	if err != nil {
		logger.Warn("Nearby cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		metrics.ObserveCache("nearby", "miss")
		return nil, false
	}

	var cafes []model.Cafe
	if err := json.Unmarshal(raw, &cafes); err != nil {
		logger.Warn("Nearby cache entry is corrupt", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		metrics.ObserveCache("nearby", "miss")
		return nil, false
	}

	metrics.ObserveCache("nearby", "hit")
	return cafes, true
}

// Set stores cafe rows for the query. Failures are logged and dropped.
func (c *NearbyCache) Set(ctx context.Context, lat, lng, radiusKm float64, cafes []model.Cafe) {
	if c.client == nil {
		return
	}
	key := c.Key(lat, lng, radiusKm)

	raw, err := json.Marshal(cafes)
	if err != nil {
		logger.Warn("Failed to encode nearby cache entry", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Warn("Nearby cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}
	metrics.ObserveCache("nearby", "set")
}

// InvalidateAll deletes every nearby entry with SCAN + DEL
func (c *NearbyCache) InvalidateAll(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	var (
		cursor  uint64
		deleted int64
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, nearbyPattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("scan nearby cache: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return fmt.Errorf("delete nearby cache: %w", err)
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	metrics.ObserveCache("nearby", "invalidate")
	logger.Debug("Nearby cache invalidated", map[string]interface{}{
		"deleted": deleted,
	})
	return nil
}
