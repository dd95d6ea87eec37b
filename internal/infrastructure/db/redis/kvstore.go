package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KeyValueStore keeps session keys in Redis without expiry.
// Key format: <namespace>:storage:<key>
type KeyValueStore struct {
	client    *redis.Client
	namespace string
}

// NewKeyValueStore creates a KeyValueStore wrapping the given Redis client.
func NewKeyValueStore(client *redis.Client, namespace string) *KeyValueStore {
	return &KeyValueStore{client: client, namespace: namespace}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *KeyValueStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *KeyValueStore) key(key string) string {
	return s.namespace + ":storage:" + key
}
