package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs for the read-mostly channel directory data
const (
	TTLChannels = 2 * time.Minute  // visible channel lists
	TTLSettings = 5 * time.Minute  // per-channel policy rows
	TTLDefault  = 1 * time.Minute
)

// Cache key prefixes
const (
	PrefixChannels    = "channels:"
	PrefixClubChannel = "channel:club:"
	PrefixSettings    = "settings:"
)

// ErrMiss is returned when a key is absent
var ErrMiss = redis.Nil

// Service is a Redis-backed cache for channel directory reads.
// A nil client degrades every call to a miss/no-op so the services
// work without Redis.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Channel directory keys
	VisibleChannelsKey(actorKey string) string
	ClubChannelKey(clubID uint64) string
	SettingsKey(channelID uint64) string
	InvalidateDirectory(ctx context.Context) error
	InvalidateSettings(ctx context.Context, channelID uint64) error

	IsAvailable() bool
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service on top of a Redis client
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether a Redis connection is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Get fetches a key and unmarshals it into dest
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set stores a value as JSON with a TTL
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// VisibleChannelsKey returns the cache key for an actor's channel list
func (c *redisCache) VisibleChannelsKey(actorKey string) string {
	return PrefixChannels + actorKey
}

// ClubChannelKey returns the cache key for a club channel lookup
func (c *redisCache) ClubChannelKey(clubID uint64) string {
	return fmt.Sprintf("%s%d", PrefixClubChannel, clubID)
}

// SettingsKey returns the cache key for a channel's settings row
func (c *redisCache) SettingsKey(channelID uint64) string {
	return fmt.Sprintf("%s%d", PrefixSettings, channelID)
}

// InvalidateDirectory drops every cached channel list and club lookup.
// Channel creation and deactivation are rare, so a full wipe is fine.
func (c *redisCache) InvalidateDirectory(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	for _, prefix := range []string{PrefixChannels, PrefixClubChannel} {
		iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

// InvalidateSettings drops one channel's cached settings
func (c *redisCache) InvalidateSettings(ctx context.Context, channelID uint64) error {
	return c.Delete(ctx, c.SettingsKey(channelID))
}
