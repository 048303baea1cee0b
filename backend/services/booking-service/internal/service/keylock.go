package service

import "sync"

// keyLocks serializes mutating operations per entity id so that at most one
// state transition is in flight per booking or charger at a time. Entries are
// kept for the process lifetime; the set is bounded by the entity count.
type keyLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the mutex for the id and returns its unlock func.
func (k *keyLocks) Lock(id int64) func() {
	k.mu.Lock()
	lock, ok := k.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[id] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
