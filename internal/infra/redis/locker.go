package redis

import (
	"context"
	"errors"
	"time"

	"checkout-service/internal/config"
	"checkout-service/internal/domain"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Second

// Locker hands out short-lived exclusive locks on string keys.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
}

func NewLocker(rdb goredis.UniversalClient, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Locker{client: redislock.New(rdb), ttl: ttl}
}

// Lock does not wait: a key already held by someone else yields ErrConflict.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}

	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			config.GetLogger().WithField("key", key).Warnf("failed to release lock: %v", err)
		}
	}, nil
}
