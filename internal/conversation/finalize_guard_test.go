package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisFinalizeGuard(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	guard := NewRedisFinalizeGuard(client, time.Hour)
	ctx := context.Background()

	ok, err := guard.Acquire(ctx, "session-a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, mr.TTL(finalizeKeyPrefix+"session-a"))

	ok, err = guard.Acquire(ctx, "session-a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = guard.Acquire(ctx, "session-b")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, guard.Release(ctx, "session-a"))
	ok, err = guard.Acquire(ctx, "session-a")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Hour)
	ok, err = guard.Acquire(ctx, "session-b")
	require.NoError(t, err)
	assert.True(t, ok, "claims expire with the ttl")
}

func TestRedisFinalizeGuard_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewRedisFinalizeGuard(client, time.Minute).Acquire(context.Background(), "s")
	assert.Error(t, err)
}

func TestNewRedisFinalizeGuard_NilClient(t *testing.T) {
	guard := NewRedisFinalizeGuard(nil, time.Hour)
	ok, err := guard.Acquire(context.Background(), "s")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = guard.Acquire(context.Background(), "s")
	assert.True(t, ok)
	assert.NoError(t, guard.Release(context.Background(), "s"))
}
