package core

// PoolStats represents runtime observability state for a worker pool.
// It is an eventually-consistent snapshot, not a transactional view.
type PoolStats struct {
	ID           string
	Workers      int
	Queued       int
	Active       int
	Running      bool
	WorkerStates []WorkerState
}

// RWLockSnapshot is a point-in-time view of an RWLock's counters.
type RWLockSnapshot struct {
	Readers        int
	Writers        int
	WaitingWriters int
}
