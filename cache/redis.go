// Package cache provides the Redis client and JSON cache-aside helpers.
package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

// InitRedis connects the package-level client. The application runs without a
// cache when Redis is unreachable.
func InitRedis(addr string) {
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		Client = nil
	} else {
		log.Println("Redis connected successfully")
	}
}

// GetClient returns the shared Redis client, or nil when caching is disabled.
func GetClient() *redis.Client {
	return Client
}

// Close releases the Redis connection.
func Close() {
	if Client != nil {
		_ = Client.Close()
	}
}
