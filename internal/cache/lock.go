package cache

import (
	"context"
	"time"

	"VolunteerHub/storage/redis"
)

const lockPrefix = "lock"

// TryLock takes a best-effort distributed lock via SetNX.
func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullKey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullKey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

func Unlock(ctx context.Context, key string) error {
	fullKey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullKey).Err()
}

// RedisLocker adapts the lock helpers to the service.SignupLocker
// interface so the service stays storage-agnostic.
type RedisLocker struct{}

func (RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return TryLock(ctx, key, ttl)
}

func (RedisLocker) Unlock(ctx context.Context, key string) error {
	return Unlock(ctx, key)
}
