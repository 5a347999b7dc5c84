package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"daycare-server/models"
)

const summaryKey = "daycare:payments:summary"

// SummaryCache stores the most recent payment summary between writes.
type SummaryCache interface {
	Get(ctx context.Context) (*models.PaymentSummary, bool, error)
	Set(ctx context.Context, summary *models.PaymentSummary) error
	Invalidate(ctx context.Context) error
}

type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

// NewRedisClient connects and pings. Callers fall back to no cache on error.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisSummaryCache) Get(ctx context.Context) (*models.PaymentSummary, bool, error) {
	val, err := c.client.Get(ctx, summaryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var summary models.PaymentSummary
	if err := json.Unmarshal(val, &summary); err != nil {
		// corrupt entry, treat as a miss
		return nil, false, nil
	}
	return &summary, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, summary *models.PaymentSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, summaryKey, data, c.ttl).Err()
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, summaryKey).Err()
}
