package redis

import (
	"context"
	"testing"
	"time"

	"checkout-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T, ttl time.Duration) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLocker(rdb, ttl), mr
}

func TestLocker_ExclusiveUntilReleased(t *testing.T) {
	locker, _ := newTestLocker(t, time.Minute)
	ctx := context.Background()

	release, err := locker.Lock(ctx, "lock:payment:order_1")
	require.NoError(t, err)

	_, err = locker.Lock(ctx, "lock:payment:order_1")
	assert.ErrorIs(t, err, domain.ErrConflict)

	other, err := locker.Lock(ctx, "lock:payment:order_2")
	require.NoError(t, err)
	other()

	release()

	again, err := locker.Lock(ctx, "lock:payment:order_1")
	require.NoError(t, err)
	again()
}

func TestLocker_ExpiresAfterTTL(t *testing.T) {
	locker, mr := newTestLocker(t, time.Second)
	ctx := context.Background()

	_, err := locker.Lock(ctx, "k")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	release, err := locker.Lock(ctx, "k")
	require.NoError(t, err)
	release()
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := splitAddr(mr.Addr())

	client, err := NewClient(configFor(host, port))
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "a", "b", 0).Err())
	v, err := mr.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "b", v)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, _ := splitAddr(mr.Addr())
	mr.Close()

	_, err := NewClient(configFor(host, port))
	assert.Error(t, err)
}
