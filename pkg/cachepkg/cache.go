// Package cachepkg provides a read-through cache for listings.
package cachepkg

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccountsKey is the cache key of the accounts listing.
const AccountsKey = "ledger:accounts"

// TransactionsKey returns the cache key of the transactions listing of an account.
func TransactionsKey(accountID string) string {
	return "ledger:transactions:" + accountID
}

// Cache stores JSON encoded values by key.
//
// Each key has a version that Invalidate bumps. Values are stored per version, so
// a fill computed before an invalidation can never be read after it.
//
//go:generate mockgen -source cache.go -destination cache_mock.go -package cachepkg
type Cache interface {
	// Get decodes the value cached for the current version of key into dest and
	// reports whether it was found. On a miss the returned version is the one to
	// pass to Set.
	Get(ctx context.Context, key string, dest any) (found bool, version int64, err error)
	// Set stores value under the given version of key.
	Set(ctx context.Context, key string, version int64, value any) error
	// Invalidate makes every value stored so far under keys unreachable.
	Invalidate(ctx context.Context, keys ...string) error
}

// RedisCache is a Cache backed by redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache returns a RedisCache whose entries expire after ttl.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func versionKey(key string) string {
	return key + ":version"
}

func valueKey(key string, version int64) string {
	return key + ":v" + strconv.FormatInt(version, 10)
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, int64, error) {
	version, err := c.rdb.Get(ctx, versionKey(key)).Int64()
	if err != nil && err != redis.Nil {
		return false, 0, err
	}

	val, err := c.rdb.Get(ctx, valueKey(key, version)).Bytes()
	if err == redis.Nil {
		return false, version, nil
	}

	if err != nil {
		return false, version, err
	}

	return true, version, json.Unmarshal(val, dest)
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, version int64, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, valueKey(key, version), b, c.ttl).Err()
}

// Invalidate implements Cache.
//
// Values of older versions are left to expire.
func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	_, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Incr(ctx, versionKey(key))
		}

		return nil
	})

	return err
}

// Close closes the underlying redis client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// NopCache never stores anything. It is used when redis is not configured.
type NopCache struct{}

// Get implements Cache.
func (NopCache) Get(context.Context, string, any) (bool, int64, error) { return false, 0, nil }

// Set implements Cache.
func (NopCache) Set(context.Context, string, int64, any) error { return nil }

// Invalidate implements Cache.
func (NopCache) Invalidate(context.Context, ...string) error { return nil }

// Connect returns a redis client after checking the server is reachable.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}
