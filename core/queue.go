package core

import "sync"

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// QueueItem pairs a task with the handle the pool returned for it.
type QueueItem struct {
	Task   Task
	Handle *TaskHandle
}

// TaskQueue is the FIFO ready queue shared by a pool's workers. Ordering is
// strict submission order; there is no priority lane.
type TaskQueue struct {
	mu    sync.Mutex
	tasks []QueueItem
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{
		tasks: make([]QueueItem, 0, defaultQueueCap),
	}
}

func (q *TaskQueue) Push(t Task, h *TaskHandle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, QueueItem{Task: t, Handle: h})
}

func (q *TaskQueue) Pop() (QueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return QueueItem{}, false
	}

	item := q.tasks[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.tasks[0] = QueueItem{}
	q.tasks = q.tasks[1:]
	q.maybeCompactLocked()

	return item, true
}

// Drain removes every queued item and returns it, releasing all task
// references. Used at shutdown so discarded handles can be completed.
func (q *TaskQueue) Drain() []QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil
	}

	drained := q.tasks
	q.tasks = make([]QueueItem, 0, defaultQueueCap)
	return drained
}

func (q *TaskQueue) MaybeCompact() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.maybeCompactLocked()
}

func (q *TaskQueue) maybeCompactLocked() {
	n := len(q.tasks)
	c := cap(q.tasks)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.tasks = make([]QueueItem, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]QueueItem, n, newCap)
	copy(newSlice, q.tasks)
	q.tasks = newSlice
}

func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *TaskQueue) IsEmpty() bool {
	return q.Len() == 0
}
