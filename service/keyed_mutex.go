package service

import "sync"

// keyedMutex provides one RWMutex per string key. Entries are reference
// counted and removed once the last holder releases, so the map does not grow
// with the number of keys ever seen.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedMutexEntry
}

type keyedMutexEntry struct {
	refs int
	lock sync.RWMutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{entries: make(map[string]*keyedMutexEntry)}
}

func (k *keyedMutex) acquire(key string) *keyedMutexEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyedMutexEntry{}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *keyedMutex) release(key string, e *keyedMutexEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Lock acquires the write side for key and returns the matching unlock.
func (k *keyedMutex) Lock(key string) func() {
	e := k.acquire(key)
	e.lock.Lock()
	return func() {
		e.lock.Unlock()
		k.release(key, e)
	}
}

// RLock acquires the read side for key and returns the matching unlock.
func (k *keyedMutex) RLock(key string) func() {
	e := k.acquire(key)
	e.lock.RLock()
	return func() {
		e.lock.RUnlock()
		k.release(key, e)
	}
}
