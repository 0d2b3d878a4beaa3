package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "revoked_token:"

// TokenDenylist records revoked refresh tokens until their natural expiry.
// Tokens are keyed by digest so the raw token never lands in Redis. A nil
// client degrades to a no-op: Revoke succeeds and IsRevoked reports false,
// so the service keeps working without Redis at the cost of logout not
// invalidating outstanding refresh tokens.
type TokenDenylist struct {
	client *redis.Client
}

func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

// Revoke marks the token as unusable for ttl. A non-positive ttl means the
// token is already expired and nothing needs to be stored.
func (d *TokenDenylist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if d.client == nil || ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, tokenKey(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("token denylist set error: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token has been revoked and not yet expired.
func (d *TokenDenylist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if d.client == nil {
		return false, nil
	}
	n, err := d.client.Exists(ctx, tokenKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("token denylist check error: %w", err)
	}
	return n > 0, nil
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedTokenPrefix + hex.EncodeToString(sum[:])
}
