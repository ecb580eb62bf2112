package coord

import "github.com/marisvale/go-coord/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the coord package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// TaskHandle observes a submitted task's completion
type TaskHandle = core.TaskHandle

// TaskState is the lifecycle state of a submitted task
type TaskState = core.TaskState

// WorkerState is the state of one worker slot
type WorkerState = core.WorkerState

// PoolStats is a monitoring snapshot of a WorkerPool
type PoolStats = core.PoolStats

// TimedLock is an exclusive lock with bounded waits and owner tracking
type TimedLock = core.TimedLock

// Guard is the scoped-acquisition helper for TimedLock
type Guard = core.Guard

// Semaphore is a counting semaphore
type Semaphore = core.Semaphore

// RWLock is a writer-preference reader/writer lock
type RWLock = core.RWLock

// RWLockSnapshot is a monitoring snapshot of an RWLock
type RWLockSnapshot = core.RWLockSnapshot

// Barrier is a reusable generational rendezvous point
type Barrier = core.Barrier

// Gate is a predicate condition-variable wrapper
type Gate = core.Gate

// SpinLock is a busy-wait lock for very short critical sections
type SpinLock = core.SpinLock

// Logger is the structured logging interface used across the library
type Logger = core.Logger

// Task lifecycle states
const (
	TaskQueued    = core.TaskQueued
	TaskExecuting = core.TaskExecuting
	TaskCompleted = core.TaskCompleted
	TaskDiscarded = core.TaskDiscarded
)

// Worker states
const (
	WorkerIdle       = core.WorkerIdle
	WorkerRunning    = core.WorkerRunning
	WorkerTerminated = core.WorkerTerminated
)

// Sentinel errors
var (
	ErrPoolShutdown    = core.ErrPoolShutdown
	ErrTaskDiscarded   = core.ErrTaskDiscarded
	ErrNotOwner        = core.ErrNotOwner
	ErrLockNotAcquired = core.ErrLockNotAcquired
)

// Constructors re-exported for users who import only this package.
var (
	NewTimedLock = core.NewTimedLock
	NewSemaphore = core.NewSemaphore
	NewRWLock    = core.NewRWLock
	NewBarrier   = core.NewBarrier
	NewGate      = core.NewGate
)
