package core

import (
	"container/list"
	"sync"
	"time"
)

// Gate is a condition-variable wrapper around a boolean. Waiters block until
// the boolean (or a caller-supplied predicate over state the Gate's lock
// guards) becomes true, re-checking after every wake to absorb spurious
// wakeups.
//
// Set mutates the boolean without waking anyone; callers must follow it with
// SignalOne or SignalAll, the classic condition-variable discipline.
//
// Unlike sync.Cond, waits can be bounded: each waiter parks on its own
// channel, so SignalOne wakes exactly one waiter and timed waits select
// between the wake channel and a timer.
type Gate struct {
	mu      sync.Mutex
	ready   bool
	waiters list.List // of chan struct{}, each buffered 1
}

func NewGate() *Gate {
	return &Gate{}
}

// Wait blocks until the internal boolean is true.
func (g *Gate) Wait() {
	g.WaitFor(func() bool { return g.ready })
}

// WaitFor blocks until pred returns true. pred is evaluated under the Gate's
// internal lock, initially and after every wake.
func (g *Gate) WaitFor(pred func() bool) {
	g.mu.Lock()
	for !pred() {
		ch := make(chan struct{}, 1)
		g.waiters.PushBack(ch)
		g.mu.Unlock()

		<-ch

		g.mu.Lock()
	}
	g.mu.Unlock()
}

// WaitTimeout blocks up to timeout for the internal boolean to become true.
// It reports whether the condition held before the deadline.
func (g *Gate) WaitTimeout(timeout time.Duration) bool {
	return g.WaitForTimeout(func() bool { return g.ready }, timeout)
}

// WaitForTimeout blocks up to timeout for pred to return true and reports
// whether it did. pred is evaluated under the Gate's internal lock.
func (g *Gate) WaitForTimeout(pred func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	g.mu.Lock()
	for !pred() {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			g.mu.Unlock()
			return false
		}

		ch := make(chan struct{}, 1)
		elem := g.waiters.PushBack(ch)
		g.mu.Unlock()

		timer := time.NewTimer(remaining)
		select {
		case <-ch:
			timer.Stop()
		case <-timer.C:
			g.mu.Lock()
			select {
			case <-ch:
				// Signaled while the timer fired; fall through to one
				// final predicate check.
			default:
				g.waiters.Remove(elem)
			}
			ok := pred()
			g.mu.Unlock()
			return ok
		}

		g.mu.Lock()
	}
	g.mu.Unlock()
	return true
}

// SignalOne wakes the longest-waiting goroutine, if any. The woken waiter
// re-checks its condition before proceeding.
func (g *Gate) SignalOne() {
	g.mu.Lock()
	if e := g.waiters.Front(); e != nil {
		g.waiters.Remove(e)
		e.Value.(chan struct{}) <- struct{}{} // buffered, never blocks
	}
	g.mu.Unlock()
}

// SignalAll wakes every waiting goroutine. Each re-checks its condition;
// only those whose condition holds proceed.
func (g *Gate) SignalAll() {
	g.mu.Lock()
	for e := g.waiters.Front(); e != nil; e = e.Next() {
		e.Value.(chan struct{}) <- struct{}{}
	}
	g.waiters.Init()
	g.mu.Unlock()
}

// Set updates the internal boolean without notifying waiters. Callers must
// signal explicitly afterward.
func (g *Gate) Set(ready bool) {
	g.mu.Lock()
	g.ready = ready
	g.mu.Unlock()
}

// IsSet returns the internal boolean. Diagnostic snapshot only.
func (g *Gate) IsSet() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}
