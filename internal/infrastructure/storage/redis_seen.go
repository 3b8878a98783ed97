package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"NewsRadar/internal/ports"
)

// defaultSeenKey holds the seen-URL set in Redis.
const defaultSeenKey = "newsradar:seen_urls"

// RedisSeenSet keeps the seen-URL set in a Redis SET, for deployments where
// several processes share one dedup state.
type RedisSeenSet struct {
	client *redis.Client
	key    string
}

var _ ports.SeenURLRepository = (*RedisSeenSet)(nil)

// NewRedisSeenSet wires a Redis client; key may be empty for the default.
func NewRedisSeenSet(client *redis.Client, key string) *RedisSeenSet {
	if key == "" {
		key = defaultSeenKey
	}
	return &RedisSeenSet{client: client, key: key}
}

// Load returns all members of the set.
func (r *RedisSeenSet) Load(ctx context.Context) ([]string, error) {
	urls, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", r.key, err)
	}
	return urls, nil
}

// Add records one URL; SADD is idempotent so repeat adds are harmless.
func (r *RedisSeenSet) Add(ctx context.Context, url string) error {
	if err := r.client.SAdd(ctx, r.key, url).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", r.key, err)
	}
	return nil
}
