package kv

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore maps (scope, key) to the Redis key "<prefix>:<scope>:<key>".
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ls"
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (r *RedisStore) key(scope, key string) string {
	return strings.Join([]string{r.prefix, scope, key}, ":")
}

func (r *RedisStore) Get(ctx context.Context, scope, key string) (string, error) {
	v, err := r.rdb.Get(ctx, r.key(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *RedisStore) Set(ctx context.Context, scope, key, value string) error {
	return r.rdb.Set(ctx, r.key(scope, key), value, 0).Err()
}

// Delete issues a single DEL so all keys disappear together.
func (r *RedisStore) Delete(ctx context.Context, scope string, keys ...string) error {
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(scope, k))
	}
	return r.rdb.Del(ctx, full...).Err()
}
