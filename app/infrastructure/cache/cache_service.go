package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

// CacheService is the string key/value store behind the response cache and
// the skill health records.
type CacheService interface {
	// Set stores value under key; a zero expiration keeps it forever.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Get returns ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Unlink removes a key without blocking the server.
	Unlink(ctx context.Context, key string) error

	HealthCheck(ctx context.Context) error
}
