package redis_client

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient opens a client sized for the rate-limit cache and pub/sub
// fan-out and verifies the connection before handing it out.
func NewRedisClient(host string, port int) (*redis.Client, error) {
	poolSize := runtime.NumCPU() * 8
	if poolSize > 512 {
		poolSize = 512
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		PoolSize: poolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	return rc, nil
}
