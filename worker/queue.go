// Package worker serializes requests from an editor to a single compile
// worker. At most one request is in flight; the others wait in FIFO order
// and may be replaced by a newer request until they are sent.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dhamidi/codeonline/compiler"
	"github.com/tliron/commonlog"
)

var ErrSent = errors.New("worker: task already sent")

type Status string

const (
	StatusQueued    Status = "queued"
	StatusSent      Status = "sent"
	StatusCompleted Status = "completed"
)

// HandleFunc processes one request. compiler.Handler.Handle is one.
type HandleFunc func(ctx context.Context, req *compiler.Request) compiler.Response

type Task struct {
	queue    *Queue
	request  *compiler.Request
	callback func(compiler.Response)
	status   Status
}

func (t *Task) Status() Status {
	t.queue.mu.Lock()
	defer t.queue.mu.Unlock()
	return t.status
}

// Sent reports whether the task is being processed or has completed.
func (t *Task) Sent() bool {
	return t.Status() != StatusQueued
}

// Update replaces the request of a task that is still queued.
func (t *Task) Update(req *compiler.Request) error {
	t.queue.mu.Lock()
	defer t.queue.mu.Unlock()
	if t.status != StatusQueued {
		return ErrSent
	}
	t.request = req
	return nil
}

type Queue struct {
	ctx    context.Context
	handle HandleFunc

	mu      sync.Mutex
	pending []*Task
	busy    bool
	idle    sync.Cond
}

// New returns a queue running requests through handle. ctx is passed to
// every call of handle.
func New(ctx context.Context, handle HandleFunc) *Queue {
	q := &Queue{ctx: ctx, handle: handle}
	q.idle.L = &q.mu
	return q
}

// Enqueue schedules req. callback receives the response on the worker
// goroutine; callbacks run in the order the tasks were enqueued.
func (q *Queue) Enqueue(req *compiler.Request, callback func(compiler.Response)) *Task {
	if callback == nil {
		panic("worker: nil callback")
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	t := &Task{queue: q, request: req, callback: callback, status: StatusQueued}
	if q.busy {
		q.pending = append(q.pending, t)
		return t
	}
	q.busy = true
	t.status = StatusSent
	go q.run(t)
	return t
}

// Len returns the number of queued tasks, not counting the one in flight.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Wait blocks until no task is queued or in flight.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.busy {
		q.idle.Wait()
	}
}

func (q *Queue) run(t *Task) {
	log := commonlog.GetLogger("codeonline.worker")
	for {
		q.mu.Lock()
		req := t.request
		q.mu.Unlock()

		start := time.Now()
		resp := q.handle(q.ctx, req)
		log.Debugf("request %s handled in %s", req.Name, time.Since(start))

		q.mu.Lock()
		t.status = StatusCompleted
		q.mu.Unlock()
		t.callback(resp)

		q.mu.Lock()
		if len(q.pending) == 0 {
			q.busy = false
			q.idle.Broadcast()
			q.mu.Unlock()
			return
		}
		t = q.pending[0]
		q.pending = q.pending[1:]
		t.status = StatusSent
		q.mu.Unlock()
	}
}
