package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"square.ai/skill-gateway/app/utils/logger"
	"square.ai/skill-gateway/config/environment_variables"
)

// NewRedisClient builds the shared redis client used by the cache, the task
// broker and the deployment locks.
func NewRedisClient() (*redis.Client, func(), error) {
	env := environment_variables.EnvironmentVariables
	redisURL := env.CACHE_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if env.CACHE_PASSWORD != "" {
		opts.Password = env.CACHE_PASSWORD
	}
	if env.CACHE_DB != "" {
		db, err := strconv.Atoi(env.CACHE_DB)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid CACHE_DB %q: %w", env.CACHE_DB, err)
		}
		opts.DB = db
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().
			WithField("error_code", "d0a4f1a6-0e4c-4c55-9d64-6f0b4f1d27f4").
			Errorf("failed to connect to redis: %v", err)
	} else {
		logger.GetLogger().Info("successfully connected to redis")
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.GetLogger().Errorf("failed to close redis client: %v", err)
		}
	}
	return client, cleanup, nil
}

// NewRedsync returns the distributed lock factory backed by client.
func NewRedsync(client *redis.Client) *redsync.Redsync {
	return redsync.New(goredis.NewPool(client))
}
