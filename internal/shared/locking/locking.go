// Package locking provides a keyed mutex used to serialize all mutating
// work for one discussion session while unrelated sessions proceed
// concurrently.
package locking

import "sync"

// KeyedMutex hands out one lock per key. Entries are reference counted and
// dropped when the last holder releases, so idle keys cost nothing.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex returns an empty keyed mutex ready for use.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*lockEntry)}
}

// Acquire blocks until the lock for key is held and returns the release
// function. Release is safe to call more than once; only the first call
// unlocks.
func (k *KeyedMutex) Acquire(key string) func() {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()
			k.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(k.entries, key)
			}
			k.mu.Unlock()
		})
	}
}
