// Package coord provides in-process concurrency primitives and a bounded
// worker-pool task scheduler for multi-goroutine programs.
//
// The library has two halves. The WorkerPool schedules opaque tasks across a
// fixed set of workers with FIFO ordering, per-worker state monitoring, and
// graceful shutdown. The primitives in coord/core — TimedLock, Semaphore,
// RWLock, Barrier, Gate and SpinLock — are standalone building blocks for
// coordinating shared state; they have no dependency on the pool.
//
// # Quick Start
//
// Create a pool, submit work, wait for it to drain:
//
//	pool := coord.New("workers", 4)
//	defer pool.Shutdown()
//
//	handle, err := pool.Submit(func(ctx context.Context) {
//		// Your code here
//	})
//	if err != nil {
//		// pool already shut down
//	}
//	<-handle.Done()
//
// # Key Concepts
//
// TimedLock: an exclusive lock whose Acquire takes a timeout and returns a
// boolean instead of blocking forever. A goroutine re-acquiring a lock it
// already holds gets an immediate failure — the deadlock is reported, not
// entered. Use Do or Lock/Guard for scoped acquisition that releases on
// every exit path.
//
// RWLock: shared/exclusive access with writer preference. A waiting writer
// blocks newly arriving readers, so readers cannot starve writers.
//
// Barrier: a reusable rendezvous for a fixed party count, gated on a
// generation counter so back-to-back cycles cannot interleave.
//
// Gate: a condition-variable wrapper with predicate re-checking and timed
// waits. Setting the condition and signalling are separate operations, as
// with a classic condition variable.
//
// # Error Handling
//
// Timeouts are reported as boolean results, misuse (releasing a lock you do
// not hold, submitting after shutdown) as sentinel errors, and task panics
// are confined to the worker boundary: they complete the task's handle with
// an error and never disturb the pool.
//
// # Observability
//
// Every component exposes read-only snapshots (Stats, Snapshot, Value,
// WorkerState). The observability/prometheus package exports them as
// Prometheus metrics.
package coord
