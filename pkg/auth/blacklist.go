package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jordanlanch/trainhub/pkg/cache"
)

const revokedKeyPrefix = "auth:revoked:"

// TokenBlacklist records revoked JWTs in Redis until their natural
// expiry. Only a SHA-256 digest of the token is stored, never the token
// itself.
type TokenBlacklist struct {
	cache *cache.Client
}

func NewTokenBlacklist(cache *cache.Client) *TokenBlacklist {
	return &TokenBlacklist{cache: cache}
}

// Add revokes a token. Callers pass the token's remaining lifetime as
// ttl so the entry disappears once the token would have expired anyway.
func (b *TokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	return b.cache.Set(ctx, revokedKeyPrefix+tokenDigest(token), "1", ttl)
}

// IsBlacklisted reports whether the token has been revoked
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return b.cache.Exists(ctx, revokedKeyPrefix+tokenDigest(token))
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
