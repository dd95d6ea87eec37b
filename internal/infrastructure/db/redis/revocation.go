package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList records logged-out token ids until they expire.
// Key format: <namespace>:revoked:<token_id>
type RevocationList struct {
	client    *redis.Client
	namespace string
}

// NewRevocationList creates a RevocationList wrapping the given Redis client.
func NewRevocationList(client *redis.Client, namespace string) *RevocationList {
	return &RevocationList{client: client, namespace: namespace}
}

// Revoke marks tokenID as revoked for ttl. A non-positive ttl is a no-op
// since the token has already expired.
func (r *RevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been revoked.
func (r *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (r *RevocationList) key(tokenID string) string {
	return fmt.Sprintf("%s:revoked:%s", r.namespace, tokenID)
}
