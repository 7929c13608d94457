package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ikkim/sipit-backend/internal/app/model"
	"github.com/ikkim/sipit-backend/internal/metrics"
	"github.com/ikkim/sipit-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const PreferencesKeyPrefix = "user:preferences:"

// PreferencesCache 사용자 설정 캐시
type PreferencesCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewPreferencesCache(client redis.UniversalClient, ttl time.Duration) *PreferencesCache {
	return &PreferencesCache{client: client, ttl: ttl}
}

func (c *PreferencesCache) key(userID string) string {
	return PreferencesKeyPrefix + userID
}

func (c *PreferencesCache) Get(ctx context.Context, userID string) (*model.UserPreferences, bool) {
	if c.client == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("Preferences cache read failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
		metrics.ObserveCache("preferences", "miss")
		return nil, false
	}

	var prefs model.UserPreferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		metrics.ObserveCache("preferences", "miss")
		return nil, false
	}
	metrics.ObserveCache("preferences", "hit")
	return &prefs, true
}

func (c *PreferencesCache) Set(ctx context.Context, prefs *model.UserPreferences) {
	if c.client == nil || prefs == nil {
		return
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(prefs.UserID), raw, c.ttl).Err(); err != nil {
		logger.Warn("Preferences cache write failed", map[string]interface{}{
			"user_id": prefs.UserID,
			"error":   err.Error(),
		})
		return
	}
	metrics.ObserveCache("preferences", "set")
}

func (c *PreferencesCache) Invalidate(ctx context.Context, userID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		logger.Warn("Preferences cache delete failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}
	metrics.ObserveCache("preferences", "invalidate")
}
