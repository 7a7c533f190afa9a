package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menuvio/backoffice/pkg/cache"
)

func newTestRevocationList(t *testing.T) (*RevocationList, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { client.Close() })
	return NewRevocationList(client), mr
}

func TestRevocationList_RevokeAndCheck(t *testing.T) {
	rl, _ := newTestRevocationList(t)
	ctx := context.Background()

	revoked, err := rl.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, rl.Revoke(ctx, "token-a", time.Hour))

	revoked, err = rl.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Other tokens stay unaffected
	revoked, err = rl.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationList_ExpiredTokenIsNoop(t *testing.T) {
	rl, mr := newTestRevocationList(t)
	ctx := context.Background()

	require.NoError(t, rl.Revoke(ctx, "expired-token", -time.Minute))
	assert.Empty(t, mr.Keys())
}

func TestRevocationList_EntryExpiresWithToken(t *testing.T) {
	rl, mr := newTestRevocationList(t)
	ctx := context.Background()

	require.NoError(t, rl.Revoke(ctx, "token-a", time.Minute))
	mr.FastForward(2 * time.Minute)

	revoked, err := rl.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationList_KeysAreHashed(t *testing.T) {
	rl, mr := newTestRevocationList(t)
	ctx := context.Background()

	require.NoError(t, rl.Revoke(ctx, "super-secret-token", time.Hour))

	for _, key := range mr.Keys() {
		assert.NotContains(t, key, "super-secret-token")
	}
}
