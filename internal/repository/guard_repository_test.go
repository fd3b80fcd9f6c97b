package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T) (*GuardRepository, *miniredis.Miniredis) {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis not available in this environment: %v", err)
	}
	t.Cleanup(srv.Close)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewGuardRepository(client, nil), srv
}

func TestGuardFirstSeenWithinWindow(t *testing.T) {
	guard, srv := newGuard(t)
	ctx := context.Background()

	first, err := guard.FirstSeen(ctx, "view:posts:1:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := guard.FirstSeen(ctx, "view:posts:1:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	srv.FastForward(2 * time.Minute)
	expired, err := guard.FirstSeen(ctx, "view:posts:1:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestGuardAllowEnforcesLimit(t *testing.T) {
	guard, srv := newGuard(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := guard.Allow(ctx, "contact:10.0.0.1", 3, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := guard.Allow(ctx, "contact:10.0.0.1", 3, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, srv.TTL("contact:10.0.0.1") > 0)
}

func TestGuardWithoutClientAlwaysPasses(t *testing.T) {
	guard := NewGuardRepository(nil, nil)
	ctx := context.Background()

	first, err := guard.FirstSeen(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
	first, err = guard.FirstSeen(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	ok, err := guard.Allow(ctx, "k", 1, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, guard.Close())
}
