package core

import "sync"

// RWLock is a reader/writer lock with writer preference: a waiting writer
// blocks new readers, so a continuous stream of readers cannot starve
// writers. Multiple readers hold the lock concurrently; writers are
// exclusive.
//
// Unlock calls must pair with the matching Lock calls; unlocking a lock that
// is not held in that mode corrupts the counters (same contract as
// sync.RWMutex).
type RWLock struct {
	mu        sync.Mutex
	readCond  *sync.Cond
	writeCond *sync.Cond

	readers        int
	writers        int // 0 or 1
	waitingWriters int
}

func NewRWLock() *RWLock {
	l := &RWLock{}
	l.readCond = sync.NewCond(&l.mu)
	l.writeCond = sync.NewCond(&l.mu)
	return l
}

// ReadLock acquires shared access. It blocks while a writer is active or
// waiting; writers have priority over newly arriving readers.
func (l *RWLock) ReadLock() {
	l.mu.Lock()
	for l.writers > 0 || l.waitingWriters > 0 {
		l.readCond.Wait()
	}
	l.readers++
	l.mu.Unlock()
}

// TryReadLock acquires shared access only if it can do so without waiting.
func (l *RWLock) TryReadLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writers > 0 || l.waitingWriters > 0 {
		return false
	}
	l.readers++
	return true
}

// ReadUnlock releases shared access. The last departing reader wakes one
// waiting writer.
func (l *RWLock) ReadUnlock() {
	l.mu.Lock()
	l.readers--
	if l.readers == 0 {
		l.writeCond.Signal()
	}
	l.mu.Unlock()
}

// WriteLock acquires exclusive access. It registers as a waiting writer
// first, which blocks new readers, then waits for active readers and any
// active writer to drain.
func (l *RWLock) WriteLock() {
	l.mu.Lock()
	l.waitingWriters++
	for l.readers > 0 || l.writers > 0 {
		l.writeCond.Wait()
	}
	l.waitingWriters--
	l.writers++
	l.mu.Unlock()
}

// TryWriteLock acquires exclusive access only if it can do so without
// waiting.
func (l *RWLock) TryWriteLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readers > 0 || l.writers > 0 {
		return false
	}
	l.writers++
	return true
}

// WriteUnlock releases exclusive access. One waiting writer is woken if any
// exist; otherwise all waiting readers are released together.
func (l *RWLock) WriteUnlock() {
	l.mu.Lock()
	l.writers--
	if l.waitingWriters > 0 {
		l.writeCond.Signal()
	} else {
		l.readCond.Broadcast()
	}
	l.mu.Unlock()
}

// Snapshot returns a point-in-time view of the lock's counters for
// monitoring. It is eventually consistent, not transactional.
func (l *RWLock) Snapshot() RWLockSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return RWLockSnapshot{
		Readers:        l.readers,
		Writers:        l.writers,
		WaitingWriters: l.waitingWriters,
	}
}
