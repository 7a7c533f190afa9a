package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/menuvio/backoffice/pkg/cache"
)

// RevocationList tracks sessions revoked before their natural expiry
// (logout). Revocation is a negative signal only: a token absent from the
// list still has to pass the provider round-trip.
type RevocationList struct {
	cache *cache.Client
}

// NewRevocationList creates a revocation list backed by Redis.
func NewRevocationList(cache *cache.Client) *RevocationList {
	return &RevocationList{cache: cache}
}

// Revoke marks the access token as revoked until it would have expired.
func (r *RevocationList) Revoke(ctx context.Context, accessToken string, ttl time.Duration) error {
	if ttl <= 0 {
		// Already expired, nothing to track
		return nil
	}
	return r.cache.Set(ctx, r.key(accessToken), "revoked", ttl)
}

// IsRevoked checks whether the access token has been revoked.
func (r *RevocationList) IsRevoked(ctx context.Context, accessToken string) (bool, error) {
	return r.cache.Exists(ctx, r.key(accessToken))
}

// key hashes the token so raw credentials never land in Redis.
func (r *RevocationList) key(accessToken string) string {
	hash := sha256.Sum256([]byte(accessToken))
	return fmt.Sprintf("session:revoked:%s", hex.EncodeToString(hash[:]))
}
