package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"authgate/internal/domain"
)

const resetKeyPrefix = "password_reset_token:"

type ResetTokenStore struct {
	rdb *redis.Client
}

func NewResetTokenStore(rdb *redis.Client) domain.ResetTokenStore {
	return &ResetTokenStore{rdb: rdb}
}

func (s *ResetTokenStore) Store(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, resetKeyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("reset token set failed: %w", err)
	}
	return nil
}

// Consume is a single GETDEL so a token cannot be redeemed twice even under
// concurrent attempts.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (int64, error) {
	raw, err := s.rdb.GetDel(ctx, resetKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrResetTokenInvalid
		}
		return 0, fmt.Errorf("reset token getdel failed: %w", err)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("reset token parse failed: %w", err)
	}

	return userID, nil
}
