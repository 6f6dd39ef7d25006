package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const settingsKey = "motel:settings"

// SettingsCache keeps the whole settings map as one JSON value with a TTL.
type SettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSettingsCache(client *redis.Client, ttl time.Duration) *SettingsCache {
	return &SettingsCache{client: client, ttl: ttl}
}

// Get reports false on a cache miss.
func (c *SettingsCache) Get(ctx context.Context) (map[string]string, bool, error) {
	raw, err := c.client.Get(ctx, settingsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	settings := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, false, err
	}
	return settings, true, nil
}

func (c *SettingsCache) Set(ctx context.Context, settings map[string]string) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, settingsKey, data, c.ttl).Err()
}

func (c *SettingsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, settingsKey).Err()
}
