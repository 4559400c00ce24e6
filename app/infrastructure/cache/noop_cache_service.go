package cache

import (
	"context"
	"time"
)

// NoOpCacheService disables caching; every read misses.
type NoOpCacheService struct{}

var _ CacheService = (*NoOpCacheService)(nil)

func (n *NoOpCacheService) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return nil
}

func (n *NoOpCacheService) Get(ctx context.Context, key string) (string, error) {
	return "", ErrCacheMiss
}

func (n *NoOpCacheService) Unlink(ctx context.Context, key string) error {
	return nil
}

func (n *NoOpCacheService) HealthCheck(ctx context.Context) error {
	return nil
}
