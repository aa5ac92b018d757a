package cache

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "invoice:session:"

var client *redis.Client

// Init initializes the Redis connection. Redis is optional: when it is not
// reachable the client stays nil and every helper degrades to a no-op, so
// sessions simply live in memory only.
func Init() error {
	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	host := os.Getenv("REDIS_SERVICE_HOST")
	if host == "" {
		host = "redis" // fallback to service name
	}
	port := os.Getenv("REDIS_SERVICE_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Close the failed client and set to nil for graceful degradation
		client.Close()
		client = nil
		return err
	}
	return nil
}

// Enabled reports whether a Redis connection is active.
func Enabled() bool {
	return client != nil
}

// GetSessionSnapshot returns the stored session snapshot, if any.
func GetSessionSnapshot(ctx context.Context, id string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SaveSessionSnapshot writes a session snapshot with the session TTL.
func SaveSessionSnapshot(ctx context.Context, id string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, sessionKeyPrefix+id, data, ttl)
}

// DeleteSessionSnapshot removes a session snapshot.
func DeleteSessionSnapshot(ctx context.Context, id string) {
	if client == nil {
		return
	}
	client.Del(ctx, sessionKeyPrefix+id)
}
