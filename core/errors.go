package core

import "errors"

var (
	// ErrPoolShutdown is returned by Submit once pool shutdown has begun.
	ErrPoolShutdown = errors.New("coord: pool is shut down")

	// ErrTaskDiscarded is reported on the handle of a task that was still
	// queued when the pool shut down. The task never ran.
	ErrTaskDiscarded = errors.New("coord: task discarded before execution")

	// ErrNotOwner is returned by TimedLock.Release when the calling
	// goroutine does not hold the lock.
	ErrNotOwner = errors.New("coord: lock released by non-owner")

	// ErrLockNotAcquired is returned by Lock/Do when the lock could not be
	// acquired, either because the wait timed out or because the calling
	// goroutine already holds it.
	ErrLockNotAcquired = errors.New("coord: lock not acquired")
)
