package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed [Store]. TTL handling is delegated to
// Redis key expiry, so idle sessions disappear without a sweeper.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store on the given client. prefix namespaces
// the keys; empty defaults to "gosession".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gosession"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

// Load returns the payload for id, or (nil, nil) when the key is absent.
func (s *RedisStore) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

// Save stores the payload under id with the given TTL. A non-positive
// ttl persists the key without expiry.
func (s *RedisStore) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Touch refreshes the key's TTL without rewriting the payload.
// Touching an absent key is not an error; a non-positive ttl removes
// the expiry.
func (s *RedisStore) Touch(ctx context.Context, id string, ttl time.Duration) error {
	var err error
	if ttl > 0 {
		err = s.client.Expire(ctx, s.key(id), ttl).Err()
	} else {
		err = s.client.Persist(ctx, s.key(id)).Err()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Remove deletes the key for id. Removing an absent id is not an error.
func (s *RedisStore) Remove(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
