package coord

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/marisvale/go-coord/core"
)

// WorkerPool executes submitted tasks on a fixed set of worker goroutines.
// Workers are started at construction and live until Shutdown.
//
// Tasks are dequeued strictly FIFO. A task that panics completes its handle
// with the panic error and leaves the worker and every other queued task
// untouched.
type WorkerPool struct {
	id      string
	workers int

	mu     sync.Mutex
	cond   *sync.Cond // workers: queue non-empty or stop requested
	idle   *sync.Cond // AwaitIdle: queue empty and no task executing
	queue  *core.TaskQueue
	states []core.WorkerState
	active int
	stop   bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	logger   core.Logger
	panicH   core.PanicHandler
	metrics  core.Metrics
	rejected core.RejectedTaskHandler
}

// Option customizes a WorkerPool's pluggable collaborators.
type Option func(*core.PoolConfig)

// WithLogger routes pool diagnostics to the given logger.
func WithLogger(logger core.Logger) Option {
	return func(c *core.PoolConfig) { c.Logger = logger }
}

// WithPanicHandler installs a custom handler for task panics.
func WithPanicHandler(h core.PanicHandler) Option {
	return func(c *core.PoolConfig) { c.PanicHandler = h }
}

// WithMetrics installs a metrics collector (e.g. the Prometheus exporter in
// observability/prometheus).
func WithMetrics(m core.Metrics) Option {
	return func(c *core.PoolConfig) { c.Metrics = m }
}

// WithRejectedTaskHandler installs a custom handler for rejected tasks.
func WithRejectedTaskHandler(h core.RejectedTaskHandler) Option {
	return func(c *core.PoolConfig) { c.RejectedTaskHandler = h }
}

// New creates a WorkerPool with the given worker count and starts its
// workers immediately. Panics if workers < 1.
func New(id string, workers int, opts ...Option) *WorkerPool {
	if workers < 1 {
		panic("coord: New requires workers >= 1")
	}
	if id == "" {
		id = fmt.Sprintf("pool-%d", workers)
	}

	cfg := core.DefaultPoolConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Normalize()

	ctx, cancel := context.WithCancel(context.Background())
	p := &WorkerPool{
		id:       id,
		workers:  workers,
		queue:    core.NewTaskQueue(),
		states:   make([]core.WorkerState, workers),
		ctx:      ctx,
		cancel:   cancel,
		logger:   cfg.Logger,
		panicH:   cfg.PanicHandler,
		metrics:  cfg.Metrics,
		rejected: cfg.RejectedTaskHandler,
	}
	p.cond = sync.NewCond(&p.mu)
	p.idle = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.workerLoop(i)
	}

	p.logger.Info("worker pool started", core.F("pool", id), core.F("workers", workers))
	return p
}

// Submit enqueues a task and wakes one idle worker. It returns a handle the
// caller can use to observe completion, or ErrPoolShutdown once Shutdown has
// begun; rejected tasks are never silently dropped.
func (p *WorkerPool) Submit(task core.Task) (*core.TaskHandle, error) {
	if task == nil {
		return nil, fmt.Errorf("coord: nil task")
	}

	p.mu.Lock()
	if p.stop {
		p.mu.Unlock()
		p.rejected.HandleRejectedTask(p.id, "shutdown")
		p.metrics.RecordTaskRejected(p.id, "shutdown")
		return nil, core.ErrPoolShutdown
	}

	handle := core.NewTaskHandle()
	p.queue.Push(task, handle)
	depth := p.queue.Len()
	p.cond.Signal()
	p.mu.Unlock()

	p.metrics.RecordQueueDepth(p.id, depth)
	return handle, nil
}

// workerLoop is the main loop for each worker.
func (p *WorkerPool) workerLoop(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		p.states[id] = core.WorkerIdle
		for p.queue.IsEmpty() && !p.stop {
			p.cond.Wait()
		}
		if p.stop {
			// Shutdown drained the queue under this lock; nothing left to run.
			p.states[id] = core.WorkerTerminated
			p.mu.Unlock()
			return
		}
		item, ok := p.queue.Pop()
		if !ok {
			p.mu.Unlock()
			continue
		}
		p.active++
		p.states[id] = core.WorkerRunning
		p.mu.Unlock()

		p.runTask(id, item)

		p.mu.Lock()
		p.active--
		if p.active == 0 && p.queue.IsEmpty() {
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}
}

// runTask executes one task with panic isolation. A panic completes the
// task's handle with an error and is reported to the panic handler, metrics
// and logger; it never reaches pool state or other tasks.
func (p *WorkerPool) runTask(workerID int, item core.QueueItem) {
	start := time.Now()
	item.Handle.MarkExecuting()

	var taskErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				taskErr = fmt.Errorf("coord: task panic: %v", r)
				stack := debug.Stack()
				p.panicH.HandlePanic(p.ctx, p.id, workerID, r, stack)
				p.metrics.RecordTaskPanic(p.id, r)
				p.logger.Error("task panicked",
					core.F("pool", p.id), core.F("worker", workerID), core.F("panic", r))
			}
		}()
		item.Task(p.ctx)
	}()

	item.Handle.Complete(taskErr)
	p.metrics.RecordTaskDuration(p.id, time.Since(start))
}

// Shutdown stops the pool: no new submissions are accepted, tasks still
// queued are discarded (their handles complete with ErrTaskDiscarded), and
// the call blocks until every worker has terminated. Workers finish the task
// they are currently running; the pool context is cancelled so cooperative
// tasks can exit early. Safe to call multiple times and from multiple
// goroutines.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	already := p.stop
	var discarded []core.QueueItem
	if !already {
		p.stop = true
		discarded = p.queue.Drain()
		p.cond.Broadcast()
		p.idle.Broadcast()
	}
	p.mu.Unlock()

	if !already {
		for _, item := range discarded {
			item.Handle.Discard()
		}
		p.cancel()
		p.logger.Info("worker pool shutting down",
			core.F("pool", p.id), core.F("discarded", len(discarded)))
	}

	p.wg.Wait()
}

// AwaitIdle blocks until the queue is empty and no task is executing. It is
// a point-in-time observation: new submissions may race in immediately after
// it returns. It also returns once the pool has shut down.
func (p *WorkerPool) AwaitIdle() {
	p.mu.Lock()
	for !p.idleLocked() {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// AwaitIdleTimeout is AwaitIdle with a bounded wait. It reports whether the
// pool was observed idle before the timeout expired.
func (p *WorkerPool) AwaitIdleTimeout(timeout time.Duration) bool {
	deadline := time.After(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		p.mu.Lock()
		idle := p.idleLocked()
		p.mu.Unlock()
		if idle {
			return true
		}

		select {
		case <-deadline:
			return false
		case <-ticker.C:
		}
	}
}

func (p *WorkerPool) idleLocked() bool {
	return p.queue.IsEmpty() && p.active == 0
}

// WorkerState returns the state of worker i. Out-of-range indices report
// WorkerTerminated.
func (p *WorkerPool) WorkerState(i int) core.WorkerState {
	if i < 0 || i >= p.workers {
		return core.WorkerTerminated
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.states[i]
}

// Pending returns the number of tasks waiting in the queue.
func (p *WorkerPool) Pending() int {
	return p.queue.Len()
}

// Active returns the number of tasks currently executing.
func (p *WorkerPool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Workers returns the fixed worker count.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// ID returns the pool's identifier.
func (p *WorkerPool) ID() string {
	return p.id
}

// IsRunning reports whether the pool is accepting submissions.
func (p *WorkerPool) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.stop
}

// Stats returns an eventually-consistent snapshot of the pool for
// monitoring.
func (p *WorkerPool) Stats() core.PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	states := make([]core.WorkerState, len(p.states))
	copy(states, p.states)

	return core.PoolStats{
		ID:           p.id,
		Workers:      p.workers,
		Queued:       p.queue.Len(),
		Active:       p.active,
		Running:      !p.stop,
		WorkerStates: states,
	}
}
