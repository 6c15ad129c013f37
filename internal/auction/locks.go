package auction

import "sync"

// keyedMutex serializes work per auction id.  The bid accept path must
// hold the auction's lock across validate + persist so two concurrent
// bids cannot both pass the increment check against a stale current
// bid.  Entries are never evicted; the map is bounded by the number of
// auctions ever touched by this process.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uint64]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *keyedMutex) Lock(key uint64) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for key.  The key must have been locked.
func (k *keyedMutex) Unlock(key uint64) {
	k.mu.Lock()
	m := k.locks[key]
	k.mu.Unlock()
	m.Unlock()
}
