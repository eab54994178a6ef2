// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent
var ErrCacheMiss = errors.New("cache miss")

// CacheService is a thin cache abstraction over Redis. The storefront runs
// fine without it; callers treat every error as a miss.
type CacheService interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// RedisCacheService implements CacheService on go-redis
type RedisCacheService struct {
	client *redis.Client
	prefix string
}

// NewRedisCacheService creates a cache service from an existing client.
// Every key is namespaced with the given prefix.
func NewRedisCacheService(client *redis.Client, prefix string) CacheService {
	return &RedisCacheService{client: client, prefix: prefix}
}

func (s *RedisCacheService) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (s *RedisCacheService) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisCacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, s.prefix+k)
	}
	return s.client.Del(ctx, prefixed...).Err()
}

func (s *RedisCacheService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// NoopCacheService implements CacheService when caching is disabled
type NoopCacheService struct{}

// NewNoopCacheService creates a cache service that never hits
func NewNoopCacheService() CacheService {
	return &NoopCacheService{}
}

func (s *NoopCacheService) Get(ctx context.Context, key string) (string, error) {
	return "", ErrCacheMiss
}

func (s *NoopCacheService) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}

func (s *NoopCacheService) Delete(ctx context.Context, keys ...string) error {
	return nil
}

func (s *NoopCacheService) Ping(ctx context.Context) error {
	return nil
}
