package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisStorage struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStorage(redisClient *redis.Client) Storage {
	return &redisStorage{
		redisClient: redisClient,
		keyPrefix:   "pokegram:storage:",
	}
}

func (s *redisStorage) GetItem(ctx context.Context, key string) (string, error) {
	val, err := s.redisClient.Get(ctx, s.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to get item %s: %w", key, err)
	}
	return val, nil
}

func (s *redisStorage) SetItem(ctx context.Context, key, value string) error {
	err := s.redisClient.Set(ctx, s.keyPrefix+key, value, 0).Err() // No expiration
	if err != nil {
		return fmt.Errorf("failed to set item %s: %w", key, err)
	}
	return nil
}

func (s *redisStorage) RemoveItem(ctx context.Context, key string) error {
	if err := s.redisClient.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove item %s: %w", key, err)
	}
	return nil
}
