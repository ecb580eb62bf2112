package core

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// waitForParked blocks until n goroutines are parked on the gate.
func waitForParked(t *testing.T, g *Gate, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		g.mu.Lock()
		parked := g.waiters.Len()
		g.mu.Unlock()
		if parked >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d of %d waiters parked", parked, n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestGate_SetThenSignalAll(t *testing.T) {
	g := NewGate()

	const waiters = 3
	var released atomic.Int32
	var wg sync.WaitGroup
	wg.Add(waiters)
	for range waiters {
		go func() {
			defer wg.Done()
			g.Wait()
			released.Add(1)
		}()
	}

	// Set without a signal must not release anyone already parked.
	waitForParked(t, g, waiters)
	g.Set(true)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, released.Load(), "Set must not implicitly notify")

	g.SignalAll()
	wg.Wait()
	assert.Equal(t, int32(waiters), released.Load())
}

func TestGate_WaitReturnsImmediatelyWhenSet(t *testing.T) {
	g := NewGate()
	g.Set(true)

	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked although the condition was already true")
	}
}

func TestGate_WaitTimeout(t *testing.T) {
	g := NewGate()

	start := time.Now()
	assert.False(t, g.WaitTimeout(50*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	g.Set(true)
	assert.True(t, g.WaitTimeout(50*time.Millisecond))
}

func TestGate_WaitTimeoutSignaledInTime(t *testing.T) {
	g := NewGate()

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.Set(true)
		g.SignalAll()
	}()

	assert.True(t, g.WaitTimeout(2*time.Second))
}

func TestGate_WaitForPredicate(t *testing.T) {
	g := NewGate()

	counter := 0
	done := make(chan struct{})
	go func() {
		g.WaitFor(func() bool { return counter >= 3 })
		close(done)
	}()

	for range 3 {
		time.Sleep(10 * time.Millisecond)
		g.mu.Lock()
		counter++
		g.mu.Unlock()
		g.SignalAll()
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitFor never saw the predicate become true")
	}
}

func TestGate_SignalOneWakesExactlyOne(t *testing.T) {
	g := NewGate()

	passed := make(chan struct{}, 2)
	for range 2 {
		go func() {
			g.Wait()
			passed <- struct{}{}
		}()
	}

	waitForParked(t, g, 2)
	g.Set(true)
	g.SignalOne()

	select {
	case <-passed:
	case <-time.After(time.Second):
		t.Fatal("SignalOne woke nobody")
	}

	select {
	case <-passed:
		t.Fatal("SignalOne woke more than one waiter")
	case <-time.After(50 * time.Millisecond):
	}

	g.SignalOne()
	select {
	case <-passed:
	case <-time.After(time.Second):
		t.Fatal("second SignalOne did not wake the remaining waiter")
	}
}

func TestGate_SpuriousWakeupRechecks(t *testing.T) {
	g := NewGate()

	released := make(chan struct{})
	go func() {
		g.Wait()
		close(released)
	}()

	// Signal without the condition: the waiter must re-check and stay parked.
	waitForParked(t, g, 1)
	g.SignalAll()
	select {
	case <-released:
		t.Fatal("waiter proceeded although the condition was false")
	case <-time.After(50 * time.Millisecond):
	}

	g.Set(true)
	g.SignalAll()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("waiter not released after Set + SignalAll")
	}
}
