package dispatch

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
)

// Job is one unit of work for a conversation
type Job func(ctx context.Context)

// Dispatcher runs jobs in submission order per key and in parallel across keys.
// A worker goroutine exists only while its key has queued jobs.
type Dispatcher struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	queues map[int64]*queue
	closed bool
	wg     sync.WaitGroup
}

type queue struct {
	jobs []Job
}

// New creates a Dispatcher whose jobs receive a context derived from ctx
func New(ctx context.Context) *Dispatcher {
	dctx, cancel := context.WithCancel(ctx)
	return &Dispatcher{
		ctx:    dctx,
		cancel: cancel,
		queues: make(map[int64]*queue),
	}
}

// Submit queues job behind earlier jobs of the same key.
// It returns false once the dispatcher is closed.
func (d *Dispatcher) Submit(key int64, job Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	q, ok := d.queues[key]
	if !ok {
		q = &queue{}
		d.queues[key] = q
		d.wg.Add(1)
		go d.run(key, q)
	}
	q.jobs = append(q.jobs, job)
	return true
}

func (d *Dispatcher) run(key int64, q *queue) {
	defer d.wg.Done()

	for {
		d.mu.Lock()
		if len(q.jobs) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs[0] = nil
		q.jobs = q.jobs[1:]
		d.mu.Unlock()

		d.execute(key, job)
	}
}

func (d *Dispatcher) execute(key int64, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[DISPATCH] job for conversation %d panicked: %v\n%s", key, r, debug.Stack())
		}
	}()
	job(d.ctx)
}

// Pending returns the number of keys with queued or running jobs
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}

// Close stops accepting jobs and waits for queued ones to finish
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}
