package core

import (
	"context"
	"sync/atomic"
)

// Task is the unit of work (Closure). The context is the pool's lifetime
// context; long-running tasks should watch it to exit early on shutdown.
type Task func(ctx context.Context)

// =============================================================================
// TaskState: lifecycle of a submitted task
// =============================================================================

type TaskState int32

const (
	// TaskQueued: accepted by the pool, waiting for a worker.
	TaskQueued TaskState = iota

	// TaskExecuting: a worker is running the task.
	TaskExecuting

	// TaskCompleted: the task finished (normally or by panicking).
	TaskCompleted

	// TaskDiscarded: the pool shut down before the task was executed.
	TaskDiscarded
)

func (s TaskState) String() string {
	switch s {
	case TaskQueued:
		return "queued"
	case TaskExecuting:
		return "executing"
	case TaskCompleted:
		return "completed"
	case TaskDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// =============================================================================
// TaskHandle: completion observation for a submitted task
// =============================================================================

// TaskHandle tracks one submitted task through its lifecycle. The scheduler
// never sees a task's result; a handle is the out-of-band completion object
// callers can wait on.
//
// A handle completes exactly once: either the task ran (Err reports a panic,
// if any) or the pool shut down first (Err reports ErrTaskDiscarded).
type TaskHandle struct {
	state atomic.Int32
	err   atomic.Value // error
	done  chan struct{}
}

// NewTaskHandle creates a handle in the TaskQueued state.
// Used by the pool when it accepts a task.
func NewTaskHandle() *TaskHandle {
	return &TaskHandle{done: make(chan struct{})}
}

// State returns the current lifecycle state. It is a snapshot; the state may
// advance immediately after the call returns.
func (h *TaskHandle) State() TaskState {
	return TaskState(h.state.Load())
}

// Done returns a channel that is closed once the task has completed or been
// discarded.
func (h *TaskHandle) Done() <-chan struct{} {
	return h.done
}

// Err returns the failure recorded for the task: a panic error, or
// ErrTaskDiscarded if the pool shut down before execution. It returns nil
// while the task is still pending and after a clean completion.
func (h *TaskHandle) Err() error {
	if v := h.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// MarkExecuting transitions the handle to TaskExecuting.
// Called by the worker that dequeued the task.
func (h *TaskHandle) MarkExecuting() {
	h.state.Store(int32(TaskExecuting))
}

// Complete transitions the handle to TaskCompleted and closes Done.
// err is non-nil when the task panicked. Called by the executing worker.
func (h *TaskHandle) Complete(err error) {
	if err != nil {
		h.err.Store(err)
	}
	h.state.Store(int32(TaskCompleted))
	close(h.done)
}

// Discard transitions the handle to TaskDiscarded and closes Done.
// Called by the pool for tasks still queued at shutdown.
func (h *TaskHandle) Discard() {
	h.err.Store(ErrTaskDiscarded)
	h.state.Store(int32(TaskDiscarded))
	close(h.done)
}

// =============================================================================
// WorkerState: per-worker execution state
// =============================================================================

// WorkerState is the state of one worker slot. It is mutated only by the
// worker itself and read by monitoring callers.
type WorkerState int32

const (
	// WorkerIdle: blocked waiting for work.
	WorkerIdle WorkerState = iota

	// WorkerRunning: executing a task.
	WorkerRunning

	// WorkerTerminated: exited after shutdown. Terminal.
	WorkerTerminated
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerRunning:
		return "running"
	case WorkerTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
