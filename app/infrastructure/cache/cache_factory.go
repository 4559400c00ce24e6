package cache

import (
	"strings"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

// NewCacheService creates a cache service based on configuration
func NewCacheService(client *redis.Client) CacheService {
	cacheType := strings.ToLower(environment_variables.EnvironmentVariables.CACHE_TYPE)

	switch cacheType {
	case "", "redis":
		return NewRedisCacheService(client)
	case "noop", "none":
		return &NoOpCacheService{}
	default:
		logger.GetLogger().Warnf("unknown CACHE_TYPE %q, falling back to redis", cacheType)
		return NewRedisCacheService(client)
	}
}

var CacheProvider = wire.NewSet(
	NewRedisClient,
	NewRedsync,
	NewCacheService,
)
