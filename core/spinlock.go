package core

import (
	"runtime"
	"sync/atomic"
)

// spinYieldBudget is how many failed CAS attempts a goroutine makes before
// yielding the processor. Pure spinning on a single-P runtime would never
// let the holder run.
const spinYieldBudget = 64

// SpinLock is a busy-wait mutual-exclusion lock for critical sections in the
// sub-microsecond range. Lock never suspends the goroutine; it spins until
// the flag is claimed, yielding the scheduler occasionally under contention.
//
// Go's atomics give the claim acquire semantics and the release store
// release semantics, so writes made under the lock happen-before the next
// successful Lock or TryLock.
//
// There is no fairness guarantee and no bound on wait time under contention.
// The zero value is an unlocked SpinLock.
type SpinLock struct {
	flag atomic.Bool
}

// Lock busy-waits until the lock is claimed.
func (l *SpinLock) Lock() {
	spins := 0
	for !l.flag.CompareAndSwap(false, true) {
		spins++
		if spins >= spinYieldBudget {
			runtime.Gosched()
			spins = 0
		}
	}
}

// TryLock makes one attempt to claim the lock.
func (l *SpinLock) TryLock() bool {
	return l.flag.CompareAndSwap(false, true)
}

// Unlock releases the lock. The caller must hold it.
func (l *SpinLock) Unlock() {
	l.flag.Store(false)
}

// IsLocked reports whether the lock is currently held.
// Diagnostic snapshot only.
func (l *SpinLock) IsLocked() bool {
	return l.flag.Load()
}
