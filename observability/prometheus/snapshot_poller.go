package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/marisvale/go-coord/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool stats snapshots.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SemaphoreSnapshotProvider provides current semaphore snapshots.
type SemaphoreSnapshotProvider interface {
	Value() int
	Waiting() int
}

// RWLockSnapshotProvider provides current reader/writer lock snapshots.
type RWLockSnapshotProvider interface {
	Snapshot() core.RWLockSnapshot
}

// SnapshotPoller periodically exports component snapshots into Prometheus
// gauges. Snapshots are eventually consistent by design; the poller never
// blocks on a component's internal locks longer than the snapshot call
// itself.
type SnapshotPoller struct {
	interval time.Duration

	mu         sync.RWMutex
	pools      map[string]PoolSnapshotProvider
	semaphores map[string]SemaphoreSnapshotProvider
	rwlocks    map[string]RWLockSnapshotProvider

	poolQueued       *prom.GaugeVec
	poolActive       *prom.GaugeVec
	poolWorkers      *prom.GaugeVec
	poolRunning      *prom.GaugeVec
	poolWorkerStates *prom.GaugeVec

	semaphorePermits *prom.GaugeVec
	semaphoreWaiting *prom.GaugeVec

	rwlockReaders        *prom.GaugeVec
	rwlockWriters        *prom.GaugeVec
	rwlockWaitingWriters *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "coord",
		Name:      "pool_queued",
		Help:      "Queued tasks per pool.",
	}, []string{"pool"})
	poolActive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "coord",
		Name:      "pool_active",
		Help:      "Active tasks per pool.",
	}, []string{"pool"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "coord",
		Name:      "pool_workers",
		Help:      "Worker count per pool.",
	}, []string{"pool"})
	poolRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "coord",
		Name:      "pool_running",
		Help:      "Pool running state (1=running, 0=shut down).",
	}, []string{"pool"})
	poolWorkerStates := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "coord",
		Name:      "pool_worker_states",
		Help:      "Workers per state per pool.",
	}, []string{"pool", "state"})

	semaphorePermits := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "coord",
		Name:      "semaphore_permits",
		Help:      "Available permits per semaphore.",
	}, []string{"semaphore"})
	semaphoreWaiting := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "coord",
		Name:      "semaphore_waiting",
		Help:      "Goroutines blocked per semaphore.",
	}, []string{"semaphore"})

	rwlockReaders := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "coord",
		Name:      "rwlock_readers",
		Help:      "Active readers per reader/writer lock.",
	}, []string{"lock"})
	rwlockWriters := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "coord",
		Name:      "rwlock_writers",
		Help:      "Active writers per reader/writer lock (0 or 1).",
	}, []string{"lock"})
	rwlockWaitingWriters := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "coord",
		Name:      "rwlock_waiting_writers",
		Help:      "Waiting writers per reader/writer lock.",
	}, []string{"lock"})

	var err error
	if poolQueued, err = registerCollector(reg, poolQueued); err != nil {
		return nil, err
	}
	if poolActive, err = registerCollector(reg, poolActive); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolRunning, err = registerCollector(reg, poolRunning); err != nil {
		return nil, err
	}
	if poolWorkerStates, err = registerCollector(reg, poolWorkerStates); err != nil {
		return nil, err
	}
	if semaphorePermits, err = registerCollector(reg, semaphorePermits); err != nil {
		return nil, err
	}
	if semaphoreWaiting, err = registerCollector(reg, semaphoreWaiting); err != nil {
		return nil, err
	}
	if rwlockReaders, err = registerCollector(reg, rwlockReaders); err != nil {
		return nil, err
	}
	if rwlockWriters, err = registerCollector(reg, rwlockWriters); err != nil {
		return nil, err
	}
	if rwlockWaitingWriters, err = registerCollector(reg, rwlockWaitingWriters); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:             interval,
		pools:                make(map[string]PoolSnapshotProvider),
		semaphores:           make(map[string]SemaphoreSnapshotProvider),
		rwlocks:              make(map[string]RWLockSnapshotProvider),
		poolQueued:           poolQueued,
		poolActive:           poolActive,
		poolWorkers:          poolWorkers,
		poolRunning:          poolRunning,
		poolWorkerStates:     poolWorkerStates,
		semaphorePermits:     semaphorePermits,
		semaphoreWaiting:     semaphoreWaiting,
		rwlockReaders:        rwlockReaders,
		rwlockWriters:        rwlockWriters,
		rwlockWaitingWriters: rwlockWaitingWriters,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.mu.Lock()
	p.pools[name] = provider
	p.mu.Unlock()
}

// AddSemaphore adds or replaces a semaphore snapshot provider by name.
func (p *SnapshotPoller) AddSemaphore(name string, provider SemaphoreSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "semaphore")
	p.mu.Lock()
	p.semaphores[name] = provider
	p.mu.Unlock()
}

// AddRWLock adds or replaces a reader/writer lock snapshot provider by name.
func (p *SnapshotPoller) AddRWLock(name string, provider RWLockSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "lock")
	p.mu.Lock()
	p.rwlocks[name] = provider
	p.mu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.Running {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}

		counts := map[core.WorkerState]int{}
		for _, s := range stats.WorkerStates {
			counts[s]++
		}
		for _, state := range []core.WorkerState{core.WorkerIdle, core.WorkerRunning, core.WorkerTerminated} {
			p.poolWorkerStates.WithLabelValues(name, state.String()).Set(float64(counts[state]))
		}
	}

	for name, provider := range p.semaphores {
		p.semaphorePermits.WithLabelValues(name).Set(float64(provider.Value()))
		p.semaphoreWaiting.WithLabelValues(name).Set(float64(provider.Waiting()))
	}

	for name, provider := range p.rwlocks {
		snap := provider.Snapshot()
		p.rwlockReaders.WithLabelValues(name).Set(float64(snap.Readers))
		p.rwlockWriters.WithLabelValues(name).Set(float64(snap.Writers))
		p.rwlockWaitingWriters.WithLabelValues(name).Set(float64(snap.WaitingWriters))
	}
}
