package identity

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationPrefix = "taskdeck:revoked:"

// RevocationList marks token ids as revoked until their natural expiry.
// Backed by redis so every instance sees a logout immediately.
type RevocationList struct {
	client *redis.Client
	now    func() time.Time
}

// NewRevocationList constructs a RevocationList.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client, now: time.Now}
}

// Revoke marks the token id revoked. The key expires when the token would
// have, so the list never grows beyond live tokens.
func (l *RevocationList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revocationPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether the token id has been revoked. Redis errors are
// treated as revoked: a token that cannot be checked is not accepted.
func (l *RevocationList) IsRevoked(ctx context.Context, tokenID string) bool {
	_, err := l.client.Get(ctx, revocationPrefix+tokenID).Result()
	if err == redis.Nil {
		return false
	}
	return true
}
