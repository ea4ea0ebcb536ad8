package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLocks_SerialisesPerSession(t *testing.T) {
	var locks sessionLocks

	release := locks.acquire("s-1")

	acquired := make(chan struct{})
	go func() {
		r := locks.acquire("s-1")
		close(acquired)
		r()
	}()

	// Another session is not held up.
	otherDone := make(chan struct{})
	go func() {
		locks.acquire("s-2")()
		close(otherDone)
	}()
	select {
	case <-otherDone:
	case <-time.After(2 * time.Second):
		t.Fatal("a different session waited on s-1")
	}

	select {
	case <-acquired:
		t.Fatal("second caller entered while s-1 was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired s-1")
	}
}

func TestSessionLocks_EntryOutlivesWaiters(t *testing.T) {
	var locks sessionLocks

	release := locks.acquire("s-1")

	const waiters = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		overlap bool
	)
	for range waiters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := locks.acquire("s-1")
			mu.Lock()
			inside++
			if inside > 1 {
				overlap = true
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			r()
		}()
	}

	// Releasing the first holder, as a delete would, must hand the same mutex on to the waiters.
	time.Sleep(20 * time.Millisecond)
	release()
	late := locks.acquire("s-1")
	mu.Lock()
	assert.Zero(t, inside, "a late caller ran beside a waiter")
	mu.Unlock()
	late()

	wg.Wait()
	assert.False(t, overlap, "two callers held s-1 at once")
	require.Zero(t, locks.len(), "idle sessions keep no entry")
}
