package core

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarrier_RequiresParties(t *testing.T) {
	assert.Panics(t, func() { NewBarrier(0) })
	assert.Equal(t, 4, NewBarrier(4).Parties())
}

// No Await call may return before all parties of its generation arrived,
// across repeated generations.
func TestBarrier_ReleasesAllPartiesTogether(t *testing.T) {
	const parties = 4
	const phases = 2

	b := NewBarrier(parties)
	var arrived atomic.Int32
	var violations atomic.Int32

	var wg sync.WaitGroup
	wg.Add(parties)
	for range parties {
		go func() {
			defer wg.Done()
			for phase := 0; phase < phases; phase++ {
				arrived.Add(1)
				b.Await()
				// Everyone from this phase must have arrived by now.
				if got := arrived.Load(); got < int32((phase+1)*parties) {
					violations.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, violations.Load(), "a waiter returned before all parties arrived")
	assert.Equal(t, int32(parties*phases), arrived.Load())
	assert.Equal(t, uint64(phases), b.Generation())
	assert.Zero(t, b.Waiting())
}

func TestBarrier_ReusableAcrossGenerations(t *testing.T) {
	const parties = 3
	b := NewBarrier(parties)

	for gen := 0; gen < 5; gen++ {
		var wg sync.WaitGroup
		wg.Add(parties)
		for range parties {
			go func() {
				defer wg.Done()
				b.Await()
			}()
		}

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("generation %d did not complete", gen)
		}
		require.Equal(t, uint64(gen+1), b.Generation())
	}
}

func TestBarrier_SinglePartyNeverBlocks(t *testing.T) {
	b := NewBarrier(1)
	done := make(chan struct{})
	go func() {
		b.Await()
		b.Await()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("single-party barrier blocked")
	}
	assert.Equal(t, uint64(2), b.Generation())
}

func TestBarrier_Reset(t *testing.T) {
	b := NewBarrier(2)

	var wg sync.WaitGroup
	wg.Add(2)
	for range 2 {
		go func() {
			defer wg.Done()
			b.Await()
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(1), b.Generation())

	// Precondition: nobody is waiting.
	b.Reset()
	assert.Equal(t, uint64(0), b.Generation())
	assert.Zero(t, b.Waiting())
}
