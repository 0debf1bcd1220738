// Package memory provides an in-process StateStore for local development
// without Redis.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

// StateStore implements repository.StateStore on a ttlcache. Entries expire
// ttl after their last write and are evicted by a background loop, so an
// abandoned client's state does not stay resident.
type StateStore struct {
	cache     *ttlcache.Cache[string, []byte]
	closeOnce sync.Once
}

// NewStateStore creates an empty store and starts its eviction loop. A zero
// ttl keeps entries until they are deleted. Call Close to stop the loop.
func NewStateStore(ttl time.Duration) *StateStore {
	cache := ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](ttl),
		// Reads do not extend the lifetime; only a Set does, like Redis SET EX.
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go cache.Start()
	return &StateStore{cache: cache}
}

// Get returns a copy of the value stored under key.
func (s *StateStore) Get(_ context.Context, key string) ([]byte, error) {
	item := s.cache.Get(key)
	if item == nil {
		return nil, apperrors.NotFound("state", key)
	}
	return append([]byte(nil), item.Value()...), nil
}

// Set stores a copy of value under key and resets its expiry.
func (s *StateStore) Set(_ context.Context, key string, value []byte) error {
	s.cache.Set(key, append([]byte(nil), value...), ttlcache.DefaultTTL)
	return nil
}

// Delete removes key.
func (s *StateStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Ping always succeeds.
func (s *StateStore) Ping(context.Context) error { return nil }

// Len reports how many entries are resident, including expired ones the
// eviction loop has not reached yet.
func (s *StateStore) Len() int { return s.cache.Len() }

// Close stops the eviction loop. It is safe to call more than once.
func (s *StateStore) Close() {
	s.closeOnce.Do(s.cache.Stop)
}
