// Package redis backs the revocation set, rate-limit counters, and reset
// token store with a shared Redis client.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"authgate/internal/logger"
)

func NewClient(redisURL string, log logger.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info("redis: connected")

	return client, nil
}

// Pinger adapts the client to the health check probe.
type Pinger struct {
	rdb *redis.Client
}

func NewPinger(rdb *redis.Client) *Pinger {
	return &Pinger{rdb: rdb}
}

func (p *Pinger) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}
