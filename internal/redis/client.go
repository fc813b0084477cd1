package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Menu cache

func (c *Client) SetMenu(ctx context.Context, restaurantID string, menu interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(menu)
	if err != nil {
		return fmt.Errorf("failed to marshal menu: %w", err)
	}
	return c.rdb.Set(ctx, "menu:"+restaurantID, jsonData, ttl).Err()
}

func (c *Client) GetMenu(ctx context.Context, restaurantID string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, "menu:"+restaurantID).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("failed to get menu: %w", err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) InvalidateMenu(ctx context.Context, restaurantID string) error {
	return c.rdb.Del(ctx, "menu:"+restaurantID).Err()
}

// Webhook event deduplication. ClaimEvent atomically claims an event id
// for 24h; the second claim for the same id returns false so replayed
// provider webhooks become acknowledged no-ops.
func (c *Client) ClaimEvent(ctx context.Context, eventID string) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, "webhook:event:"+eventID, "seen", 24*time.Hour).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim webhook event: %w", err)
	}
	return ok, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
