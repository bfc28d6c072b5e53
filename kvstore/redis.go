package kvstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps every key under a shared prefix so several deployments can
// share one Redis database.
type RedisStore struct {
	redis  *redis.Client
	prefix string
}

func NewRedisStore(redis *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get from redis")
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	// Local storage entries never expire.
	if err := s.redis.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to set in redis")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrap(err, "failed to delete from redis")
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.redis.Close()
}
