package cache

import (
	"context"
	"errors"
	"time"

	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisKVStore stores documents as plain redis strings. A zero ttl keeps
// keys forever, which is what the order list needs.
type RedisKVStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisKVStore(rdb *redis.Client, ttl time.Duration) *RedisKVStore {
	return &RedisKVStore{rdb: rdb, ttl: ttl}
}

func (r *RedisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisKVStore) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, key, value, r.ttl).Err()
}

var _ usecase.KVStore = (*RedisKVStore)(nil)
