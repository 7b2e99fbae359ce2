package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMarkerStore keeps show-once sentinels in redis so suppression holds
// across page views from any device tied to the same visitor. Implements
// engine.MarkerStore.
type RedisMarkerStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMarkerStore(client *redis.Client, ttl time.Duration) *RedisMarkerStore {
	return &RedisMarkerStore{client: client, ttl: ttl}
}

func (s *RedisMarkerStore) Get(ctx context.Context, key string) (bool, error) {
	_, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisMarkerStore) Set(ctx context.Context, key string) error {
	return s.client.Set(ctx, key, "1", s.ttl).Err()
}
