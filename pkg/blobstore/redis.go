package blobstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores blobs as Redis string values.
type Redis struct {
	client redis.UniversalClient
	opts   *redisOptions
}

// NewRedis creates a Redis-backed store.
// The client lifecycle is owned by the caller.
//
// Example:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL")) // pkg/redis
//	store := blobstore.NewRedis(client,
//	    blobstore.WithPrefix("routes"),
//	)
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	o := defaultRedisOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Redis{client: client, opts: o}
}

// Get retrieves the blob stored under key.
// Returns ErrNotFound if the key does not exist.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := r.client.Get(ctx, r.prefixedKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put stores data under key with the configured TTL.
func (r *Redis) Put(ctx context.Context, key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	// Redis interprets 0 as no expiration.
	ttl := max(r.opts.ttl, 0)

	if err := r.client.Set(ctx, r.prefixedKey(key), data, ttl).Err(); err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

// Delete removes key from Redis.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return r.client.Del(ctx, r.prefixedKey(key)).Err()
}

// prefixedKey returns the full Redis key with prefix.
func (r *Redis) prefixedKey(key string) string {
	return joinKey(r.opts.prefix, ":", key)
}

// RedisOption configures the Redis store.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix string
	ttl    time.Duration
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{}
}

// WithPrefix sets a key prefix. Keys are stored as "{prefix}:{key}".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// WithTTL sets the expiration of stored blobs.
// Zero or negative means blobs never expire.
// Default: no expiration.
func WithTTL(d time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.ttl = d
	}
}

var _ Store = (*Redis)(nil)
