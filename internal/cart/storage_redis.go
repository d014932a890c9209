package cart

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCmdable is the subset of the redis client the cart storage needs.
type RedisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStorage persists a cart under a single redis key, refreshing its TTL on every save.
type RedisStorage struct {
	client RedisCmdable
	key    string
	ttl    time.Duration
}

func NewRedisStorage(client RedisCmdable, key string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, key: key, ttl: ttl}
}

func (r *RedisStorage) Key() string {
	return r.key
}

func (r *RedisStorage) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisStorage) Save(ctx context.Context, data []byte) error {
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}
