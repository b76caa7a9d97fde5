package guard

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerExclusive(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	lease, ok, err := l.Acquire(ctx, "POST:/v1/clients", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, "POST:/v1/clients", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = l.Acquire(ctx, "DELETE:/v1/clients/1", time.Minute)
	assert.True(t, ok, "different keys do not contend")

	require.NoError(t, lease.Release(ctx))
	_, ok, _ = l.Acquire(ctx, "POST:/v1/clients", time.Minute)
	assert.True(t, ok)
}

func TestMemoryLockerExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLocker()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	stale, ok, _ := l.Acquire(ctx, "k", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	fresh, ok, _ := l.Acquire(ctx, "k", time.Second)
	require.True(t, ok, "expired lease no longer blocks")

	// The expired holder must not free the new holder's lock.
	require.NoError(t, stale.Release(ctx))
	_, ok, _ = l.Acquire(ctx, "k", time.Second)
	assert.False(t, ok)

	require.NoError(t, fresh.Release(ctx))
	require.NoError(t, fresh.Release(ctx))
}

func TestRedisLocker(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	rdb, err := NewRedisClient(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx := context.Background()
	l := NewRedisLocker(rdb)
	key := "test:" + uuid.NewString()

	lease, ok, err := l.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lease.Release(ctx))
	again, ok, err := l.Acquire(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, again.Release(ctx))
}
