package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	t.Parallel()
	locks := newKeyedMutex()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("owner-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestKeyedMutexEntriesAreReclaimed(t *testing.T) {
	t.Parallel()
	locks := newKeyedMutex()

	unlockA := locks.Lock("a")
	unlockB := locks.RLock("b")
	unlockA()
	unlockB()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.entries, "released entries must not linger")
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	t.Parallel()
	locks := newKeyedMutex()

	unlockA := locks.Lock("a")
	defer unlockA()

	// A writer on a different key must not block.
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
}
