package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SettingsPrefix is the Redis key prefix for settings hashes. One hash holds
// all settings of an organization:
//
//	Key:   settings:<platform>:<org_id>
//	Field: <setting name>
//	Value: <setting value>
const SettingsPrefix = "settings:"

// RedisStore keeps settings in Redis hashes.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("settings: redis connection failed: %w", err)
	}

	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient wraps an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func hashKey(platform, orgID string) string {
	return SettingsPrefix + platform + ":" + orgID
}

// Get returns the setting value or defaultValue when the field is missing.
func (s *RedisStore) Get(ctx context.Context, platform, orgID, key, defaultValue string) (string, error) {
	val, err := s.client.HGet(ctx, hashKey(platform, orgID), key).Result()
	if errors.Is(err, redis.Nil) {
		return defaultValue, nil
	}
	if err != nil {
		return "", fmt.Errorf("settings: redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores a setting value.
func (s *RedisStore) Set(ctx context.Context, platform, orgID, key, value string) error {
	if err := s.client.HSet(ctx, hashKey(platform, orgID), key, value).Err(); err != nil {
		return fmt.Errorf("settings: redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a setting so lookups fall back to their defaults.
func (s *RedisStore) Delete(ctx context.Context, platform, orgID, key string) error {
	if err := s.client.HDel(ctx, hashKey(platform, orgID), key).Err(); err != nil {
		return fmt.Errorf("settings: redis delete %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
