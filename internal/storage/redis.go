package storage

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const scanBatchSize = 200

// RedisStore persists records in Redis. Values are stored as JSON strings;
// prefix queries use SCAN so they never block the server.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "connect to redis at %s", addr)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "marshal value for key %s", key)
	}
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return errors.Wrapf(err, "set key %s", key)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string, out any) error {
	payload, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrapf(err, "get key %s", key)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, "unmarshal value for key %s", key)
	}
	return nil
}

func (s *RedisStore) QueryByPrefix(ctx context.Context, prefix string, predicate func(key string) bool) (map[string][]byte, error) {
	result := make(map[string][]byte)

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "scan prefix %s", prefix)
		}

		for _, key := range keys {
			if predicate != nil && !predicate(key) {
				continue
			}
			payload, err := s.client.Get(ctx, key).Bytes()
			if err == redis.Nil {
				continue // evicted between scan and get
			}
			if err != nil {
				return nil, errors.Wrapf(err, "get key %s", key)
			}
			result[key] = payload
		}

		cursor = next
		if cursor == 0 {
			return result, nil
		}
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
