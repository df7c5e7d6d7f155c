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

const (
	revokedKeyPrefix = "token_blacklist:"
	epochKeyPrefix   = "user_revoked_at:"
)

type RevocationSet struct {
	rdb *redis.Client
}

func NewRevocationSet(rdb *redis.Client) domain.RevocationSet {
	return &RevocationSet{rdb: rdb}
}

func (s *RevocationSet) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revocation set failed: %w", err)
	}
	return nil
}

func (s *RevocationSet) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("revocation exists failed: %w", err)
	}
	return n > 0, nil
}

// RevokeAllForUser stores a revocation epoch. Tokens issued before it are
// treated as revoked; the key only needs to live as long as the longest
// outstanding token, hence the TTL.
func (s *RevocationSet) RevokeAllForUser(ctx context.Context, userID int64, ttl time.Duration) error {
	key := epochKeyPrefix + strconv.FormatInt(userID, 10)
	now := time.Now().UnixNano()

	if err := s.rdb.Set(ctx, key, now, ttl).Err(); err != nil {
		return fmt.Errorf("revocation epoch set failed: %w", err)
	}
	return nil
}

func (s *RevocationSet) UserRevokedAt(ctx context.Context, userID int64) (time.Time, error) {
	key := epochKeyPrefix + strconv.FormatInt(userID, 10)

	raw, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("revocation epoch get failed: %w", err)
	}

	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("revocation epoch parse failed: %w", err)
	}

	return time.Unix(0, nanos), nil
}
