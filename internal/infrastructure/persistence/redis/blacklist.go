package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/rental/pkg/errors"
)

// TokenBlacklist revoked access tokens.
// JWTs are stateless, so logout and forced revocation park the raw token
// here until the token would have expired anyway.
// Key: blacklist:{token}
type TokenBlacklist struct {
	client *redis.Client
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

// Revoke blacklists the token for ttl. A non-positive ttl is a no-op
// since the token is already expired.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := fmt.Sprintf("blacklist:%s", token)
	if err := b.client.Set(ctx, key, "revoked", ttl).Err(); err != nil {
		return apperrors.Wrap(err, "revoke token failed")
	}
	return nil
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := fmt.Sprintf("blacklist:%s", token)
	n, err := b.client.Exists(ctx, key).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "check token blacklist failed")
	}
	return n > 0, nil
}
