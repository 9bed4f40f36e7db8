package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedLocksSerializePerKey(t *testing.T) {
	assert := assert.New(t)

	locks := newKeyedLocks()
	counters := map[string]*int{"a": new(int), "b": new(int), "c": new(int)}

	wg := sync.WaitGroup{}
	for i := 0; i < 100; i++ {
		for key := range counters {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				unlock := locks.acquire(key)
				defer unlock()
				*counters[key]++
			}(key)
		}
	}
	wg.Wait()

	for key, counter := range counters {
		assert.Equal(100, *counter, key)
	}
}

func TestKeyedLocksMultiKeyNoDeadlock(t *testing.T) {
	locks := newKeyedLocks()

	wg := sync.WaitGroup{}
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// opposite orders must not deadlock
			if i%2 == 0 {
				unlock := locks.acquire("x", "y")
				unlock()
			} else {
				unlock := locks.acquire("y", "x")
				unlock()
			}
		}(i)
	}
	wg.Wait()
}

func TestKeyedLocksReleaseCleansUp(t *testing.T) {
	assert := assert.New(t)

	locks := newKeyedLocks()
	unlock := locks.acquire("a", "b", "a")
	assert.Len(locks.locks, 2) // duplicate keys collapse
	unlock()
	assert.Len(locks.locks, 0)
}
