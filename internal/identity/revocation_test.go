package identity

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRevocationList(t *testing.T) (*RevocationList, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRevocationList(client), mr
}

func TestRevokeThenIsRevoked(t *testing.T) {
	list, _ := newTestRevocationList(t)
	ctx := context.Background()

	assert.False(t, list.IsRevoked(ctx, "jti-1"))

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	assert.True(t, list.IsRevoked(ctx, "jti-1"))

	// Other tokens are unaffected.
	assert.False(t, list.IsRevoked(ctx, "jti-2"))
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	list, mr := newTestRevocationList(t)
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "jti-old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(revocationPrefix+"jti-old"))
	assert.False(t, list.IsRevoked(ctx, "jti-old"))
}

func TestRevocationEntryExpiresWithToken(t *testing.T) {
	list, mr := newTestRevocationList(t)
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "jti-3", time.Now().Add(time.Minute)))
	assert.True(t, list.IsRevoked(ctx, "jti-3"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, list.IsRevoked(ctx, "jti-3"))
}

func TestUnreachableRedisTreatsTokenAsRevoked(t *testing.T) {
	list, mr := newTestRevocationList(t)
	mr.Close()

	assert.True(t, list.IsRevoked(context.Background(), "jti-4"))
}
