// Package asyncdispatch runs queued work on a dedicated goroutine,
// detaching the streaming thread that enqueues graph-restructuring work
// (idle-pad-probe callbacks) from the thread that actually performs it.
// This is the only legal way to mutate a media graph without racing the
// runtime's own streaming threads (spec.md §5). It mirrors the
// Initialize/Close/run shape of gortsplib's internal asyncprocessor,
// substituting a buffered channel for its ring buffer since that package
// belongs to a different module.
package asyncdispatch

import "context"

// Queue is an asynchronous work queue: Push enqueues a job to run on the
// dispatch goroutine, never on the caller's.
type Queue struct {
	BufferSize int
	OnError    func(context.Context, error)

	running   bool
	jobs      chan func() error
	ctx       context.Context
	ctxCancel func()
	done      chan struct{}
}

// Initialize allocates the queue's buffer and context.
func (q *Queue) Initialize() {
	size := q.BufferSize
	if size <= 0 {
		size = 64
	}
	q.jobs = make(chan func() error, size)
	q.ctx, q.ctxCancel = context.WithCancel(context.Background())
	q.done = make(chan struct{})
}

// Start launches the dispatch goroutine.
func (q *Queue) Start() {
	q.running = true
	go q.run()
}

// Close cancels the queue and waits for the dispatch goroutine to exit.
func (q *Queue) Close() {
	q.ctxCancel()
	if q.running {
		<-q.done
	}
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		select {
		case job := <-q.jobs:
			if err := job(); err != nil && q.OnError != nil {
				q.OnError(q.ctx, err)
			}
		case <-q.ctx.Done():
			return
		}
	}
}

// Push enqueues a job for the dispatch goroutine. It returns false if the
// queue is full or already closed.
func (q *Queue) Push(job func() error) bool {
	if q.ctx.Err() != nil {
		return false
	}
	select {
	case q.jobs <- job:
		return true
	default:
		return false
	}
}
