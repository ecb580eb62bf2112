package core

import (
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultLockTimeout is the acquisition timeout used by Lock and Do when the
// caller passes 0.
const DefaultLockTimeout = 5 * time.Second

// TimedLock is an exclusive lock with bounded acquisition waits, owner
// tracking, and recursive-acquisition rejection.
//
// A goroutine that already holds the lock and calls Acquire again gets an
// immediate failure instead of deadlocking; this failure signal is part of
// the contract and is deliberately not promoted to reentrancy. The lock is
// not fair: when it is released, any waiting goroutine may win it.
type TimedLock struct {
	// slot has capacity 1; holding the token means holding the lock.
	// Acquisition is a send, so waits can be bounded with a timer.
	slot   chan struct{}
	name   string
	owner  atomic.Uint64 // goroutine ID of the holder, 0 when free
	holds  atomic.Int64
	logger Logger
}

// NewTimedLock creates an unlocked TimedLock. The name identifies the lock
// in diagnostics and deadlock warnings.
func NewTimedLock(name string) *TimedLock {
	return NewTimedLockWithLogger(name, NewDefaultLogger())
}

// NewTimedLockWithLogger creates a TimedLock that reports recursive-acquire
// and timeout warnings through the given logger.
func NewTimedLockWithLogger(name string, logger Logger) *TimedLock {
	if name == "" {
		name = "unnamed"
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &TimedLock{
		slot:   make(chan struct{}, 1),
		name:   name,
		logger: logger,
	}
}

// Acquire blocks until the lock is held or the timeout expires.
// It returns false without holding the lock when:
//   - the calling goroutine already holds it (logged as a warning), or
//   - the timeout expires (logged as a deadlock warning).
func (l *TimedLock) Acquire(timeout time.Duration) bool {
	gid := goroutineID()
	if l.owner.Load() == gid {
		l.logger.Warn("recursive lock attempt rejected",
			F("mutex", l.name), F("goroutine", gid))
		return false
	}

	if timeout <= 0 {
		return l.tryAcquire(gid)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l.slot <- struct{}{}:
		l.owner.Store(gid)
		l.holds.Add(1)
		return true
	case <-timer.C:
		l.logger.Warn("possible deadlock: timed out waiting for mutex",
			F("mutex", l.name), F("goroutine", gid), F("timeout", timeout))
		return false
	}
}

// TryAcquire makes one non-blocking attempt to take the lock.
func (l *TimedLock) TryAcquire() bool {
	return l.tryAcquire(goroutineID())
}

func (l *TimedLock) tryAcquire(gid uint64) bool {
	select {
	case l.slot <- struct{}{}:
		l.owner.Store(gid)
		l.holds.Add(1)
		return true
	default:
		return false
	}
}

// Release releases the lock. It returns ErrNotOwner, leaving the lock
// untouched, when the calling goroutine does not hold it.
func (l *TimedLock) Release() error {
	if l.owner.Load() != goroutineID() {
		return ErrNotOwner
	}
	l.owner.Store(0)
	l.holds.Add(-1)
	<-l.slot
	return nil
}

// IsHeld reports whether any goroutine currently holds the lock.
// Diagnostic only; the answer may be stale by the time it is observed.
func (l *TimedLock) IsHeld() bool {
	return l.owner.Load() != 0
}

// Owner returns the goroutine ID of the current holder, or 0 when free.
func (l *TimedLock) Owner() uint64 {
	return l.owner.Load()
}

// HoldCount returns the net number of acquisitions (0 or 1 at any quiescent
// point; useful for detecting unbalanced Release calls in tests).
func (l *TimedLock) HoldCount() int64 {
	return l.holds.Load()
}

// Name returns the diagnostic name given at construction.
func (l *TimedLock) Name() string {
	return l.name
}

// =============================================================================
// Guard: scoped acquisition
// =============================================================================

// Guard holds a TimedLock acquired by Lock and releases it exactly once via
// Unlock, which is safe to defer and to call repeatedly.
type Guard struct {
	lock     *TimedLock
	released atomic.Bool
}

// Lock acquires the lock and returns a Guard for it, or ErrLockNotAcquired
// if the acquisition failed. timeout <= 0 selects DefaultLockTimeout.
func (l *TimedLock) Lock(timeout time.Duration) (*Guard, error) {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	if !l.Acquire(timeout) {
		return nil, fmt.Errorf("mutex %q: %w", l.name, ErrLockNotAcquired)
	}
	return &Guard{lock: l}, nil
}

// Unlock releases the guarded lock. Calls after the first are no-ops.
func (g *Guard) Unlock() {
	if g == nil || !g.released.CompareAndSwap(false, true) {
		return
	}
	_ = g.lock.Release()
}

// Do runs fn while holding the lock and releases it on every exit path,
// including a panic inside fn (which is re-raised after the release).
// It returns ErrLockNotAcquired if the lock could not be taken; fn does not
// run in that case. timeout <= 0 selects DefaultLockTimeout.
func (l *TimedLock) Do(timeout time.Duration, fn func()) error {
	g, err := l.Lock(timeout)
	if err != nil {
		return err
	}
	defer g.Unlock()
	fn()
	return nil
}
