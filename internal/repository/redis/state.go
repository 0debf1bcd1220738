package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

const keyPrefix = "storefront:state:"

// StateStore implements repository.StateStore using Redis. Every write
// refreshes the key's TTL.
type StateStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewStateStore creates a new Redis-backed state store.
func NewStateStore(client redis.UniversalClient, ttl time.Duration) *StateStore {
	return &StateStore{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the raw value stored under key.
func (s *StateStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("state", key)
		}
		return nil, apperrors.Wrap(err, "redis get state")
	}
	return data, nil
}

// Set stores value under key with the configured TTL.
func (s *StateStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, keyPrefix+key, value, s.ttl).Err(); err != nil {
		return apperrors.Wrap(err, "redis set state")
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *StateStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return apperrors.Wrap(err, "redis del state")
	}
	return nil
}

// Ping checks the Redis connection.
func (s *StateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
