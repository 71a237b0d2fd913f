package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBlobStore keeps blobs as plain string values under a key prefix.
type RedisBlobStore struct {
	client *redis.Client
	prefix string
}

func NewRedisBlobStore(client *redis.Client, prefix string) *RedisBlobStore {
	return &RedisBlobStore{client: client, prefix: prefix}
}

func (s *RedisBlobStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBlobNotFound
	}
	return b, err
}

func (s *RedisBlobStore) Save(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.key(key), value, 0).Err()
}

func (s *RedisBlobStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
