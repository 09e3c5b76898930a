package redislock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integración: corre sólo con TEST_REDIS_URL (ej. redis://localhost:6379/15).
func newTestLocker(t *testing.T) *Locker {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	client, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return New(client)
}

func TestTryLock_Exclusive(t *testing.T) {
	l := newTestLocker(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	unlock, ok, err := l.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire")

	require.NoError(t, unlock(ctx))

	unlock2, ok, err := l.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, unlock2(ctx))
}

func TestTryLock_ExpiredLockIsNotReleasedByOldHolder(t *testing.T) {
	l := newTestLocker(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	unlockOld, ok, err := l.TryLock(ctx, key, 100*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(250 * time.Millisecond)

	unlockNew, ok, err := l.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, unlockOld(ctx))

	_, ok, err = l.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "old holder must not release the new lock")

	require.NoError(t, unlockNew(ctx))
}

func TestTryLock_InvalidTTL(t *testing.T) {
	_, ok, err := New(nil).TryLock(context.Background(), "k", 0)
	assert.Error(t, err)
	assert.False(t, ok)
}
