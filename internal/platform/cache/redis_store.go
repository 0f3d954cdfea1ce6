package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"btc_backend/internal/feature/marketdata/usecase"
)

// RedisStore keeps entries in Redis under <namespace>:<sha256(key)>.
// Entries carry the same {timestamp, data} envelope as the file backend and
// additionally get a Redis TTL equal to the expiry.
type RedisStore struct {
	rdb       *redis.Client
	expiry    time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.CacheStore = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore. If namespace is empty, it uses "btcdata".
func NewRedisStore(rdb *redis.Client, namespace string, opts ...Option) *RedisStore {
	o := buildOptions(opts)
	if namespace == "" {
		namespace = "btcdata"
	}
	return &RedisStore{rdb: rdb, expiry: o.expiry, namespace: safe(namespace), now: o.now}
}

func (s *RedisStore) redisKey(key string) string {
	return s.namespace + ":" + storageID(key)
}

// Get returns the payload stored under key if it is younger than the expiry.
func (s *RedisStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	b, err := s.rdb.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, usecase.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get %s: %v", usecase.ErrCacheIO, key, err)
	}
	return decodeEntry(b, s.now(), s.expiry)
}

// Set writes payload under key with a TTL of the store expiry.
func (s *RedisStore) Set(ctx context.Context, key string, payload json.RawMessage) error {
	b, err := encodeEntry(s.now(), payload)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.redisKey(key), b, s.expiry).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", usecase.ErrCacheIO, key, err)
	}
	return nil
}

// Clear deletes every key in the namespace.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.deleteByPattern(ctx, s.namespace+":*"); err != nil {
		return fmt.Errorf("%w: redis clear: %v", usecase.ErrCacheIO, err)
	}
	return nil
}

// deleteByPattern deletes all keys matching a given pattern using SCAN.
func (s *RedisStore) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := s.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
