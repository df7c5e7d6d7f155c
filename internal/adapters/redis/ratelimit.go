package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"authgate/internal/domain"
)

const rateLimitKeyPrefix = "rate_limit:"

// RateLimiter implements a sliding window over a sorted set: one member per
// attempt, scored by its timestamp, trimmed to the window on every check.
type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) domain.RateLimiter {
	return &RateLimiter{rdb: rdb}
}

func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	redisKey := rateLimitKeyPrefix + key
	now := time.Now()
	windowStart := now.Add(-window)

	pipe := l.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit trim failed: %w", err)
	}

	if countCmd.Val() >= int64(limit) {
		oldest, err := l.rdb.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err != nil {
			return false, 0, fmt.Errorf("rate limit range failed: %w", err)
		}

		retryAfter := window
		if len(oldest) > 0 {
			oldestAt := time.Unix(0, int64(oldest[0].Score))
			retryAfter = oldestAt.Add(window).Sub(now)
		}
		if retryAfter < time.Second {
			retryAfter = time.Second
		}

		return false, retryAfter, nil
	}

	pipe = l.rdb.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit record failed: %w", err)
	}

	return true, 0, nil
}
