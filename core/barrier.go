package core

import "sync"

// Barrier is a reusable rendezvous point for a fixed number of parties.
// Await blocks until the configured number of goroutines have arrived, then
// releases them all and becomes immediately reusable for the next cycle.
//
// Release is gated on the generation counter, not the raw arrival count, so
// a goroutine re-entering Await for the next cycle cannot slip past waiters
// from the previous one.
type Barrier struct {
	mu   sync.Mutex
	cond *sync.Cond

	parties    int
	count      int
	generation uint64
}

// NewBarrier creates a barrier for the given party count.
// Panics if parties < 1.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		panic("coord: NewBarrier requires parties >= 1")
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Await blocks until all parties have arrived for the current generation.
// The final arrival advances the generation and wakes every waiter.
func (b *Barrier) Await() {
	b.mu.Lock()
	gen := b.generation

	b.count++
	if b.count == b.parties {
		b.generation++
		b.count = 0
		b.cond.Broadcast()
		b.mu.Unlock()
		return
	}

	for gen == b.generation {
		b.cond.Wait()
	}
	b.mu.Unlock()
}

// Reset returns the barrier to generation 0 with zero arrivals.
//
// Precondition: no goroutine is blocked in Await. Resetting with waiters
// present leaves them stranded on a generation that will never advance.
func (b *Barrier) Reset() {
	b.mu.Lock()
	b.count = 0
	b.generation = 0
	b.mu.Unlock()
}

// Parties returns the configured party count.
func (b *Barrier) Parties() int {
	return b.parties
}

// Waiting returns the number of arrivals in the current generation.
// Diagnostic snapshot only.
func (b *Barrier) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Generation returns the current generation number.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
