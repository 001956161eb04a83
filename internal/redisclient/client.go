package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"classifieds-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func listingKey(loc models.Location) string {
	return fmt.Sprintf("listings:%s:%s", loc.State, loc.County)
}

// GetCachedListings returns the cached approved ads for a location.
// A cache miss returns (nil, false, nil).
func (c *Client) GetCachedListings(ctx context.Context, loc models.Location) ([]models.Ad, bool, error) {
	raw, err := c.rdb.Get(ctx, listingKey(loc)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var ads []models.Ad
	if err := json.Unmarshal(raw, &ads); err != nil {
		return nil, false, fmt.Errorf("corrupt listing cache entry: %w", err)
	}
	return ads, true, nil
}

// SetCachedListings stores the approved ads for a location with a TTL.
func (c *Client) SetCachedListings(ctx context.Context, loc models.Location, ads []models.Ad, ttl time.Duration) error {
	raw, err := json.Marshal(ads)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listingKey(loc), raw, ttl).Err()
}

// InvalidateListings drops the cached entries for the given locations.
// Called when an ad's visibility changes (approval or rejection).
func (c *Client) InvalidateListings(ctx context.Context, locs []models.Location) error {
	if len(locs) == 0 {
		return nil
	}
	keys := make([]string, len(locs))
	for i, loc := range locs {
		keys[i] = listingKey(loc)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// AcquireModerationLock takes a per-ad lock so only one moderator call at a
// time runs the read-check-refund-update sequence for an ad. The store's
// conditional update remains the final arbiter; the lock narrows the window
// in which two reject calls could both reach the refund step.
func (c *Client) AcquireModerationLock(ctx context.Context, adID int64, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:moderation:%d", adID), "1", ttl).Result()
}

// ReleaseModerationLock releases a per-ad moderation lock.
func (c *Client) ReleaseModerationLock(ctx context.Context, adID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:moderation:%d", adID)).Err()
}
