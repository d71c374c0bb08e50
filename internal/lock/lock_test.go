package redlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) redis.UniversalClient {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestLockAndUnlock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	locker := NewLocker(client, "poke:safe_123", "holder-a")
	require.NoError(t, locker.Lock(ctx, time.Minute))

	other := NewLocker(client, "poke:safe_123", "holder-b")
	assert.Error(t, other.Lock(ctx, time.Minute))

	require.NoError(t, locker.Unlock(ctx))
	assert.NoError(t, other.Lock(ctx, time.Minute))
}

func TestUnlockByNonHolder(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	locker := NewLocker(client, "poke:safe_123", "holder-a")
	require.NoError(t, locker.Lock(ctx, time.Minute))

	impostor := NewLocker(client, "poke:safe_123", "holder-b")
	assert.Error(t, impostor.Unlock(ctx))
}

func TestWaitLock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first := NewLocker(client, "poke:safe_9", "holder-a")
	require.NoError(t, first.Lock(ctx, time.Minute))

	second := NewLocker(client, "poke:safe_9", "holder-b")
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = first.Unlock(ctx)
	}()
	assert.NoError(t, second.WaitLock(ctx, time.Minute, 2*time.Second))
}
