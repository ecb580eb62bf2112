package core

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSemaphore_InitialValue(t *testing.T) {
	s := NewSemaphore(3, "initial")
	assert.Equal(t, 3, s.Value())
	assert.Equal(t, "initial", s.Name())

	assert.Panics(t, func() { NewSemaphore(-1, "bad") })
}

func TestSemaphore_TryAcquire(t *testing.T) {
	s := NewSemaphore(1, "try")

	require.True(t, s.TryAcquire())
	assert.False(t, s.TryAcquire())

	s.Release()
	assert.True(t, s.TryAcquire())
}

func TestSemaphore_AcquireTimeout(t *testing.T) {
	s := NewSemaphore(0, "timed")

	start := time.Now()
	assert.False(t, s.AcquireTimeout(50*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	s.Release()
	assert.True(t, s.AcquireTimeout(50*time.Millisecond))
}

func TestSemaphore_ReleaseWakesWaiter(t *testing.T) {
	s := NewSemaphore(0, "wake")

	done := make(chan struct{})
	go func() {
		s.Acquire()
		close(done)
	}()

	// Give the acquirer time to block.
	time.Sleep(20 * time.Millisecond)
	s.Release()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("release did not wake the blocked acquirer")
	}
	assert.Equal(t, 0, s.Value(), "handed-off permit must not also raise the count")
}

func TestSemaphore_AtMostKConcurrent(t *testing.T) {
	const permits = 3
	const goroutines = 12

	s := NewSemaphore(permits, "bound")
	var inside atomic.Int32
	var peak atomic.Int32

	var eg errgroup.Group
	for range goroutines {
		eg.Go(func() error {
			s.Acquire()
			n := inside.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inside.Add(-1)
			s.Release()
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	assert.LessOrEqual(t, peak.Load(), int32(permits))
	assert.Equal(t, permits, s.Value())
}

// Producer/consumer over a 5-slot bounded buffer: every item is consumed
// exactly once, in FIFO order, and the buffer never over- or underflows.
func TestSemaphore_BoundedBufferProducerConsumer(t *testing.T) {
	const slots = 5
	const items = 10

	empty := NewSemaphore(slots, "empty")
	full := NewSemaphore(0, "full")
	var mu sync.Mutex
	buffer := make([]int, 0, slots)

	consumed := make([]int, 0, items)

	var eg errgroup.Group
	eg.Go(func() error { // producer
		for i := 0; i < items; i++ {
			empty.Acquire()
			mu.Lock()
			if len(buffer) >= slots {
				t.Error("buffer overflow")
			}
			buffer = append(buffer, i)
			mu.Unlock()
			full.Release()
		}
		return nil
	})
	eg.Go(func() error { // consumer
		for i := 0; i < items; i++ {
			full.Acquire()
			mu.Lock()
			if len(buffer) == 0 {
				t.Error("buffer underflow")
			}
			item := buffer[0]
			buffer = buffer[1:]
			mu.Unlock()
			empty.Release()
			consumed = append(consumed, item)
		}
		return nil
	})
	require.NoError(t, eg.Wait())

	require.Len(t, consumed, items)
	for i, item := range consumed {
		assert.Equal(t, i, item, "items must arrive in FIFO order")
	}
	assert.Equal(t, slots, empty.Value())
	assert.Equal(t, 0, full.Value())
}

func TestSemaphore_TimedOutWaiterDoesNotStealPermit(t *testing.T) {
	s := NewSemaphore(0, "steal")

	timedOut := make(chan bool, 1)
	go func() {
		timedOut <- s.AcquireTimeout(30 * time.Millisecond)
	}()

	assert.False(t, <-timedOut)

	// The expired waiter must be gone: a release now goes to the count.
	s.Release()
	assert.Equal(t, 1, s.Value())
	assert.Equal(t, 0, s.Waiting())
}
