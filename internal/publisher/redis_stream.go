package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStream receives one event per completed scraping run.
const SnapshotStream = "trades.snapshot.updated"

// RunSummary describes a completed scraping run for stream consumers.
type RunSummary struct {
	ScrapedAt time.Time `json:"scraped_at"`
	Players   int       `json:"players"`
	Cards     int       `json:"cards"`
	Failures  int       `json:"failures"`
}

// RedisPublisher publishes scrape-run events to Redis streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher with its own Redis connection.
func NewRedisPublisher(redisURL string) (*RedisPublisher, error) {
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

	return &RedisPublisher{
		client: client,
	}, nil
}

// NewRedisPublisherFromClient wraps an existing Redis client.
func NewRedisPublisherFromClient(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// PublishSnapshotUpdated announces a completed scraping run.
func (rp *RedisPublisher) PublishSnapshotUpdated(ctx context.Context, summary RunSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: SnapshotStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
