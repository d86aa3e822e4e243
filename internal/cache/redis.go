package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/mo"
)

// RedisStore keeps encoded values in redis with SET ... EX.
type RedisStore[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	codec  Codec[T]
}

// NewRedisStoreWithURL parses a redis:// URL and connects lazily.
func NewRedisStoreWithURL[T any](url, prefix string, ttl time.Duration) (*RedisStore[T], error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return NewRedisStore[T](redis.NewClient(opts), prefix, ttl), nil
}

func NewRedisStore[T any](client *redis.Client, prefix string, ttl time.Duration) *RedisStore[T] {
	return &RedisStore[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		codec:  JSONCodec[T]{},
	}
}

func (r *RedisStore[T]) key(k string) string {
	return r.prefix + k
}

func (r *RedisStore[T]) Get(ctx context.Context, key string) (mo.Option[T], error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return mo.None[T](), nil
	}
	if err != nil {
		return mo.None[T](), fmt.Errorf("redis get %s: %w", key, err)
	}

	value, err := r.codec.Decode(raw)
	if err != nil {
		// An entry written in an older format reads as a miss.
		return mo.None[T](), nil
	}
	return mo.Some(value), nil
}

func (r *RedisStore[T]) Set(ctx context.Context, key string, value T) error {
	raw, err := r.codec.Encode(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(key), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection.
func (r *RedisStore[T]) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore[T]) Close() error {
	return r.client.Close()
}
