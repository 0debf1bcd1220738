package service

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const defaultLockStripes = 256

// clientLocks serializes work per client ID over a fixed set of mutexes.
// Two clients may share a stripe; one client always maps to the same stripe.
type clientLocks struct {
	stripes []sync.Mutex
}

func newClientLocks(n int) *clientLocks {
	if n < 1 {
		n = defaultLockStripes
	}
	return &clientLocks{stripes: make([]sync.Mutex, n)}
}

// lock acquires the stripe for clientID and returns its unlock function.
func (l *clientLocks) lock(clientID string) func() {
	mu := &l.stripes[xxhash.Sum64String(clientID)%uint64(len(l.stripes))]
	mu.Lock()
	return mu.Unlock
}
