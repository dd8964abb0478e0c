package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pokegram/feed/internal/domain"

	"github.com/redis/go-redis/v9"
)

// DetailCache stores fetched item details under the name they were looked up
// by. Names are case-insensitive.
type DetailCache interface {
	// Get returns (nil, false, nil) on a miss.
	Get(ctx context.Context, name string) (*domain.ItemDetail, bool, error)
	Set(ctx context.Context, name string, detail *domain.ItemDetail) error
}

type redisDetailCache struct {
	redisClient *redis.Client
	keyPrefix   string
	ttl         time.Duration
}

func NewRedisDetailCache(redisClient *redis.Client, ttl time.Duration) DetailCache {
	return &redisDetailCache{
		redisClient: redisClient,
		keyPrefix:   "pokegram:detail:",
		ttl:         ttl,
	}
}

func (c *redisDetailCache) key(name string) string {
	return c.keyPrefix + strings.ToLower(strings.TrimSpace(name))
}

func (c *redisDetailCache) Get(ctx context.Context, name string) (*domain.ItemDetail, bool, error) {
	key := c.key(name)
	val, err := c.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached detail %s: %w", name, err)
	}

	var detail domain.ItemDetail
	if err := json.Unmarshal(val, &detail); err != nil {
		return nil, false, &domain.DeserializationError{Source: key, Err: err}
	}
	return &detail, true, nil
}

func (c *redisDetailCache) Set(ctx context.Context, name string, detail *domain.ItemDetail) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal detail %s: %w", name, err)
	}

	if err := c.redisClient.Set(ctx, c.key(name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache detail %s: %w", name, err)
	}
	return nil
}
