// Package cache provides the Redis-backed read cache for candidate
// rankings and swipe stats. Everything here is best-effort: a cache
// failure degrades to a storage read, never to a request failure.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"

	"github.com/astromatch/astromatch/internal/config"
)

// Key builders. Every cached value for a user hangs off one of these so
// invalidation can name the exact keys to drop.
func CandidatesKey(userID string) string {
	return fmt.Sprintf("candidates:%s", userID)
}

func StatsKey(userID string) string {
	return fmt.Sprintf("stats:%s", userID)
}

// Service wraps the Redis client with JSON helpers.
type Service struct {
	client *redis.Client
}

// NewService connects to Redis and verifies the connection. The tracing
// hook ties cache operations into the request trace.
func NewService(cfg config.Redis) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	client.AddHook(redisotel.NewTracingHook())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Service{client: client}, nil
}

// GetJSON loads and unmarshals a cached value. The bool reports whether
// the key was present.
func (s *Service) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache key %s: %w", key, err)
	}
	return true, nil
}

// SetJSON marshals and stores a value with a TTL.
func (s *Service) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache key %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Delete drops the given keys. Missing keys are not an error.
func (s *Service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// HealthCheck reports whether Redis answers a ping.
func (s *Service) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (s *Service) Close() error {
	return s.client.Close()
}
