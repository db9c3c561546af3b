// Package taskqueue provides the cooperative single-threaded task queue a
// context runs on.
//
// Exactly one goroutine drains a Queue, either by calling RunPending once per
// turn or by handing control to Run. Post may be called from any goroutine;
// that is how transports deliver executor notifications without touching
// context state directly.
//
// A turn runs only the tasks that were queued when it started. Tasks posted
// during a turn run on the next one, so "return to the event loop" has a
// well-defined meaning for availability and deferred-flush logic.
package taskqueue

import (
	"context"
	"sync"
	"sync/atomic"
)

// Task is a queued unit of work.
type Task struct {
	fn       func()
	name     string
	canceled atomic.Bool
	done     atomic.Bool
}

// Name returns the label given at Post.
func (t *Task) Name() string { return t.name }

// Cancel prevents a pending task from running. It reports whether the task
// was still pending.
func (t *Task) Cancel() bool {
	if t == nil || t.done.Load() {
		return false
	}
	return t.canceled.CompareAndSwap(false, true)
}

// Pending reports whether the task has neither run nor been canceled.
func (t *Task) Pending() bool {
	return t != nil && !t.done.Load() && !t.canceled.Load()
}

// Queue is a FIFO of tasks drained by one goroutine.
type Queue struct {
	wake   chan struct{}
	tasks  []*Task
	turn   atomic.Uint64
	mu     sync.Mutex
	closed bool
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Post appends fn to the queue. Posting to a closed queue returns a task
// that is already canceled.
func (q *Queue) Post(name string, fn func()) *Task {
	t := &Task{fn: fn, name: name}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		t.canceled.Store(true)
		return t
	}
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return t
}

// RunPending runs one turn: every task queued before the call, in order.
// It returns the number of tasks that ran.
func (q *Queue) RunPending() int {
	q.mu.Lock()
	batch := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	q.turn.Add(1)
	ran := 0
	for _, t := range batch {
		if t.canceled.Load() {
			continue
		}
		t.done.Store(true)
		t.fn()
		ran++
	}
	return ran
}

// Drain runs turns until the queue is empty or maxTurns is reached and
// returns the number of tasks run.
func (q *Queue) Drain(maxTurns int) int {
	total := 0
	for i := 0; i < maxTurns && q.Len() > 0; i++ {
		total += q.RunPending()
	}
	return total
}

// Run drains the queue until ctx is done or the queue is closed.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.RunPending()

		q.mu.Lock()
		closed := q.closed
		empty := len(q.tasks) == 0
		q.mu.Unlock()
		if closed && empty {
			return nil
		}
		if !empty {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		}
	}
}

// Len returns the number of queued tasks, including canceled ones not yet
// skipped.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Turn returns the number of turns run so far.
func (q *Queue) Turn() uint64 {
	return q.turn.Load()
}

// Close stops accepting tasks. Tasks already queued still run.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}
