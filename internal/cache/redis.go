package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Client is the shared Redis connection. Its one consumer is the rate
// limiter; request read caching is handled by the in-process TTL cache.
var Client *redis.Client

// InitRedis connects to Redis and verifies the connection. A dead
// Redis fails startup; a Redis that dies later only degrades the rate
// limiter to its in-process fallback.
func InitRedis(addr, password string, db int) error {
	Client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed for %s: %w", addr, err)
	}

	logrus.WithField("addr", addr).Info("redis connected")
	return nil
}

// Close releases the Redis connection
func Close() error {
	if Client == nil {
		return nil
	}
	return Client.Close()
}
