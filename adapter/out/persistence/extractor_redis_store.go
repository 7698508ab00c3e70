// Package persistence implements the KV storage port over redis and mongodb.
package persistence

import (
	"context"

	"github.com/redis/go-redis/v9"

	"extractor_server/core/port/out"
)

const redisKeyPrefix = "extractor:"

// RedisStore implements out.KVStore on a redis client.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// GetItem returns (nil, nil) for a missing key.
func (s *RedisStore) GetItem(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// SetItem stores the value without expiry; dataset and token documents
// live until explicitly removed.
func (s *RedisStore) SetItem(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, redisKeyPrefix+key, value, 0).Err()
}

func (s *RedisStore) RemoveItem(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ out.KVStore = (*RedisStore)(nil)
