// Package keylock provides per-key mutual exclusion with a bounded wait.
// Bid submission uses it to serialize writes per auction item without
// blocking submissions on unrelated items.
package keylock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTimeout is returned when the lock could not be acquired within the
// configured wait.
var ErrTimeout = errors.New("timed out waiting for lock")

type entry struct {
	sem  chan struct{} // capacity 1
	refs int
}

// KeyedMutex is a set of mutexes addressed by string key. Entries are
// created on first use and removed once the last waiter releases.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty KeyedMutex.
func New() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

// Acquire takes the lock for key, waiting at most wait. On success it
// returns a release func that must be called on every exit path. It fails
// with ErrTimeout when the wait elapses and with the context error when
// ctx is cancelled first.
func (k *KeyedMutex) Acquire(ctx context.Context, key string, wait time.Duration) (func(), error) {
	e := k.retain(key)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-e.sem
				k.put(key)
			})
		}
		return release, nil

	case <-timer.C:
		k.put(key)
		return nil, ErrTimeout

	case <-ctx.Done():
		k.put(key)
		return nil, ctx.Err()
	}
}

// Len reports the number of live entries. Intended for tests.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func (k *KeyedMutex) retain(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *KeyedMutex) put(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e := k.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}
