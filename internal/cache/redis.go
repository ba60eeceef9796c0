package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arenhart/tradepost/internal/roster"
)

// SnapshotKey is where the current roster snapshot is cached.
const SnapshotKey = "tradepost:snapshot"

// SnapshotTTL bounds snapshot staleness in cache; the database and the
// snapshot file remain the durable copies.
const SnapshotTTL = 24 * time.Hour

// RedisCache handles caching of the current roster snapshot.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// SetSnapshot caches the roster snapshot.
func (rc *RedisCache) SetSnapshot(ctx context.Context, snap roster.Snapshot) error {
	data, err := json.Marshal(snap.Players)
	if err != nil {
		return fmt.Errorf("encoding snapshot for cache: %w", err)
	}
	return rc.client.Set(ctx, SnapshotKey, data, SnapshotTTL).Err()
}

// GetSnapshot returns the cached snapshot. The second return reports a
// cache hit; a miss is a normal condition, not an error.
func (rc *RedisCache) GetSnapshot(ctx context.Context) (roster.Snapshot, bool, error) {
	data, err := rc.client.Get(ctx, SnapshotKey).Bytes()
	if err == redis.Nil {
		return roster.Snapshot{}, false, nil
	}
	if err != nil {
		return roster.Snapshot{}, false, err
	}

	var players []roster.PlayerRoster
	if err := json.Unmarshal(data, &players); err != nil {
		return roster.Snapshot{}, false, fmt.Errorf("decoding cached snapshot: %w", err)
	}

	return roster.Snapshot{Players: players, ScrapedAt: time.Now()}, true, nil
}

// Delete removes keys from the cache.
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}
