package service

import "sync"

// LockTable hands out per-key mutexes so check-then-act regions can be
// serialized on a (buyer, listing) pair, a payment id, or a request id.
// Entries are refcounted and removed once the last holder unlocks.
type LockTable struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewLockTable() *LockTable {
	return &LockTable{entries: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key and returns its release func.
func (t *LockTable) Lock(key string) func() {
	t.mu.Lock()
	e, ok := t.entries[key]
	if !ok {
		e = &lockEntry{}
		t.entries[key] = e
	}
	e.refs++
	t.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		t.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(t.entries, key)
		}
		t.mu.Unlock()
	}
}
