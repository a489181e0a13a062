package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config captures the settings for the Redis-backed durable tier.
type Config struct {
	Addr      string
	DB        int
	Namespace string
	Timeout   time.Duration
}

// Open connects to Redis, validates connectivity with a ping and returns a
// Store. The caller owns the returned client and must Close it.
func Open(ctx context.Context, cfg Config) (*Store, *redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewStore(client, cfg.Namespace), client, nil
}
