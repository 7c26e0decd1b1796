package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/logfields"
)

// Redis is a Store backed by a Redis server.
type Redis struct {
	clt    *redis.Client
	logger *zap.Logger
}

// NewRedis creates a Redis store from a redis:// or rediss:// URL.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url failed: %w", err)
	}

	return NewRedisFromClient(redis.NewClient(opts)), nil
}

// NewRedisFromClient creates a Redis store that uses clt.
func NewRedisFromClient(clt *redis.Client) *Redis {
	return &Redis{
		clt:    clt,
		logger: zap.L().Named(loggerName).Named("redis"),
	}
}

// Ping checks if the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.clt.Ping(ctx).Err()
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	val, err := r.clt.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis INCR %s failed: %w", key, err)
	}

	return val, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.clt.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("redis GET %s failed: %w", key, err)
	}

	return val, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.clt.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s failed: %w", key, err)
	}

	return nil
}

func (r *Redis) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	if err := r.clt.SetEx(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis SETEX %s failed: %w", key, err)
	}

	r.logger.Debug(
		"stored key with expiration",
		logfields.Event("kv_key_stored"),
		logfields.CacheKey(key),
		zap.Duration("ttl", ttl),
	)

	return nil
}

func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	cnt, err := r.clt.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis EXISTS %s failed: %w", key, err)
	}

	return cnt > 0, nil
}

func (r *Redis) Close() error {
	return r.clt.Close()
}
