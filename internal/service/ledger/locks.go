package ledger

import (
	"sort"
	"sync"
)

// keyedLocks serializes mutations per affected key (a user id or a pair
// key). Multi-key acquisition sorts the keys first so opposite orders
// cannot deadlock.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: map[string]*lockEntry{}}
}

func (k *keyedLocks) acquire(keys ...string) func() {
	sorted := make([]string, 0, len(keys))
	seen := map[string]bool{}
	for _, key := range keys {
		if !seen[key] {
			seen[key] = true
			sorted = append(sorted, key)
		}
	}
	sort.Strings(sorted)

	entries := make([]*lockEntry, len(sorted))
	for i, key := range sorted {
		k.mu.Lock()
		entry, ok := k.locks[key]
		if !ok {
			entry = &lockEntry{}
			k.locks[key] = entry
		}
		entry.refs++
		k.mu.Unlock()
		entry.mu.Lock()
		entries[i] = entry
	}

	return func() {
		for i := len(sorted) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
			k.mu.Lock()
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(k.locks, sorted[i])
			}
			k.mu.Unlock()
		}
	}
}
