package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimedLock_AcquireRelease(t *testing.T) {
	l := NewTimedLockWithLogger("basic", NewNoOpLogger())

	require.True(t, l.Acquire(time.Second))
	assert.True(t, l.IsHeld())
	assert.NotZero(t, l.Owner())
	assert.Equal(t, int64(1), l.HoldCount())

	require.NoError(t, l.Release())
	assert.False(t, l.IsHeld())
	assert.Zero(t, l.Owner())
	assert.Equal(t, int64(0), l.HoldCount())
}

func TestTimedLock_RecursiveAcquireRejected(t *testing.T) {
	l := NewTimedLockWithLogger("recursive", NewNoOpLogger())

	require.True(t, l.Acquire(time.Second))
	// Same goroutine must get an immediate failure, not a deadlock.
	start := time.Now()
	assert.False(t, l.Acquire(time.Second))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	require.NoError(t, l.Release())
	assert.True(t, l.Acquire(time.Second), "release should make the lock acquirable again")
	require.NoError(t, l.Release())
}

func TestTimedLock_AcquireTimeout(t *testing.T) {
	l := NewTimedLockWithLogger("timeout", NewNoOpLogger())

	require.True(t, l.Acquire(time.Second))
	defer func() { _ = l.Release() }()

	done := make(chan bool, 1)
	go func() {
		done <- l.Acquire(50 * time.Millisecond)
	}()

	select {
	case got := <-done:
		assert.False(t, got, "acquire should time out while lock is held elsewhere")
	case <-time.After(time.Second):
		t.Fatal("timed acquire did not return")
	}
}

func TestTimedLock_TryAcquire(t *testing.T) {
	l := NewTimedLockWithLogger("try", NewNoOpLogger())

	require.True(t, l.TryAcquire())
	assert.False(t, l.TryAcquire())
	require.NoError(t, l.Release())
	assert.True(t, l.TryAcquire())
	require.NoError(t, l.Release())
}

func TestTimedLock_ReleaseByNonOwner(t *testing.T) {
	l := NewTimedLockWithLogger("owner", NewNoOpLogger())

	acquired := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if !l.Acquire(time.Second) {
			t.Error("holder goroutine failed to acquire")
			close(acquired)
			return
		}
		close(acquired)
		<-release
		if err := l.Release(); err != nil {
			t.Errorf("owner release failed: %v", err)
		}
	}()

	<-acquired
	assert.ErrorIs(t, l.Release(), ErrNotOwner)
	assert.True(t, l.IsHeld(), "failed release must leave the lock held")

	close(release)
	wg.Wait()
}

func TestTimedLock_ScopedIncrementsAreExact(t *testing.T) {
	l := NewTimedLockWithLogger("counter", NewNoOpLogger())

	const goroutines = 10
	const increments = 1000

	counter := 0
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range increments {
				err := l.Do(5*time.Second, func() {
					counter++
				})
				if err != nil {
					t.Errorf("Do failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*increments, counter)
	assert.False(t, l.IsHeld())
	assert.Equal(t, int64(0), l.HoldCount())
}

func TestTimedLock_DoReleasesOnPanic(t *testing.T) {
	l := NewTimedLockWithLogger("panicky", NewNoOpLogger())

	func() {
		defer func() {
			require.NotNil(t, recover(), "panic should propagate out of Do")
		}()
		_ = l.Do(time.Second, func() {
			panic("boom")
		})
	}()

	assert.False(t, l.IsHeld(), "lock must be released after a panic in fn")
	assert.True(t, l.TryAcquire())
	require.NoError(t, l.Release())
}

func TestTimedLock_LockReportsFailure(t *testing.T) {
	l := NewTimedLockWithLogger("guarded", NewNoOpLogger())

	g, err := l.Lock(time.Second)
	require.NoError(t, err)

	blockedErr := make(chan error, 1)
	go func() {
		_, err := l.Lock(30 * time.Millisecond)
		blockedErr <- err
	}()
	assert.ErrorIs(t, <-blockedErr, ErrLockNotAcquired)

	g.Unlock()
	g.Unlock() // second unlock is a no-op
	assert.False(t, l.IsHeld())
}

// Two goroutines take locks in mirror order; both cross-acquisitions must
// time out instead of deadlocking, and the test must finish promptly.
func TestTimedLock_CrossOrderAcquisitionTimesOut(t *testing.T) {
	lockA := NewTimedLockWithLogger("lock-a", NewNoOpLogger())
	lockB := NewTimedLockWithLogger("lock-b", NewNoOpLogger())

	start := time.Now()
	haveFirst := make(chan struct{})
	results := make(chan bool, 2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if !lockA.Acquire(time.Second) {
			t.Error("failed to acquire lock-a")
			return
		}
		haveFirst <- struct{}{}
		<-haveFirst // wait until the mirror goroutine holds lockB
		results <- lockB.Acquire(2 * time.Second)
		_ = lockA.Release()
	}()
	go func() {
		defer wg.Done()
		<-haveFirst
		if !lockB.Acquire(time.Second) {
			t.Error("failed to acquire lock-b")
			return
		}
		haveFirst <- struct{}{}
		results <- lockA.Acquire(2 * time.Second)
		_ = lockB.Release()
	}()

	wg.Wait()
	close(results)

	for got := range results {
		assert.False(t, got, "cross acquisition should time out")
	}
	assert.Less(t, time.Since(start), 4*time.Second, "both goroutines must terminate near the timeout")
}
