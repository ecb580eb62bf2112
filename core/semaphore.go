package core

import (
	"container/list"
	"sync"
	"time"
)

// Semaphore is a counting semaphore. Acquire consumes one permit, blocking
// while none are available; Release adds one permit, handing it directly to
// the longest-waiting acquirer if any.
//
// Permits are handed off FIFO. The permit count can grow past the initial
// value: Release is not bounded by it.
type Semaphore struct {
	mu      sync.Mutex
	permits int
	name    string
	waiters list.List // of chan struct{}, each buffered 1
}

// NewSemaphore creates a semaphore holding initial permits.
// Panics if initial is negative. The name identifies the semaphore in
// diagnostics.
func NewSemaphore(initial int, name string) *Semaphore {
	if initial < 0 {
		panic("coord: NewSemaphore requires initial >= 0")
	}
	if name == "" {
		name = "unnamed"
	}
	return &Semaphore{permits: initial, name: name}
}

// Acquire blocks until a permit is available, then consumes it.
func (s *Semaphore) Acquire() {
	s.mu.Lock()
	if s.permits > 0 {
		s.permits--
		s.mu.Unlock()
		return
	}
	ch := make(chan struct{}, 1)
	s.waiters.PushBack(ch)
	s.mu.Unlock()

	<-ch // permit handed off by Release
}

// TryAcquire consumes a permit if one is immediately available.
func (s *Semaphore) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permits > 0 {
		s.permits--
		return true
	}
	return false
}

// AcquireTimeout blocks up to timeout for a permit. It returns false without
// a permit when the wait expires first.
func (s *Semaphore) AcquireTimeout(timeout time.Duration) bool {
	s.mu.Lock()
	if s.permits > 0 {
		s.permits--
		s.mu.Unlock()
		return true
	}
	if timeout <= 0 {
		s.mu.Unlock()
		return false
	}
	ch := make(chan struct{}, 1)
	elem := s.waiters.PushBack(ch)
	s.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		s.mu.Lock()
		defer s.mu.Unlock()
		select {
		case <-ch:
			// Release handed us a permit while the timer was firing;
			// the acquisition succeeded after all.
			return true
		default:
		}
		s.waiters.Remove(elem)
		return false
	}
}

// Release adds one permit. If acquirers are waiting, the permit goes to the
// front of the queue instead of the shared count, so the woken goroutine
// cannot lose it to a later arrival.
func (s *Semaphore) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.waiters.Front(); e != nil {
		s.waiters.Remove(e)
		e.Value.(chan struct{}) <- struct{}{} // buffered, never blocks
		return
	}
	s.permits++
}

// Value returns the current permit count. It is immediately stale under
// concurrency and must not be used for control decisions.
func (s *Semaphore) Value() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permits
}

// Waiting returns the number of goroutines blocked in Acquire.
// Diagnostic snapshot only.
func (s *Semaphore) Waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiters.Len()
}

// Name returns the diagnostic name given at construction.
func (s *Semaphore) Name() string {
	return s.name
}
