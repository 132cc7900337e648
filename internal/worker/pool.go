// Package worker runs background persistence jobs off the quiz event path.
package worker

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrPoolClosed is returned if a Submit is attempted after Close.
	ErrPoolClosed = errors.New("worker pool closed")
	// ErrQueueFull is returned by TrySubmit when no queue slot is free.
	ErrQueueFull = errors.New("worker queue full")
)

// Job is a unit of work submitted to the Pool.
type Job func(ctx context.Context) error

// Pool runs jobs using a fixed number of goroutines.
// A pool with a single worker executes jobs strictly in submission order,
// which is how progress writes for one quiz session are serialized.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	onError func(error)

	closeMu sync.Mutex
	closed  bool
}

// New creates a pool with the given number of workers and job queue capacity.
// onError is called from a worker goroutine for every job that fails; it may be nil.
func New(workers, queue int, onError func(error)) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	if onError == nil {
		onError = func(error) {}
	}

	return &Pool{
		jobs:    make(chan Job, queue),
		workers: workers,
		onError: onError,
	}
}

// NewSerial creates a started single-worker pool.
func NewSerial(ctx context.Context, queue int, onError func(error)) *Pool {
	p := New(1, queue, onError)
	p.Start(ctx)
	return p
}

// Start begins the worker goroutines. Workers exit when ctx is done or the pool is closed.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					if err := job(ctx); err != nil {
						p.onError(err)
					}
				}
			}
		}()
	}
}

// Submit enqueues a job. It blocks while the queue is full.
func (p *Pool) Submit(job Job) error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.jobs <- job
	return nil
}

// TrySubmit enqueues a job without waiting for a free slot.
func (p *Pool) TrySubmit(job Job) error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Do submits a job and waits for it to run. The job's error goes to the caller
// instead of onError.
func (p *Pool) Do(ctx context.Context, job Job) error {
	done := make(chan error, 1)
	err := p.Submit(func(jobCtx context.Context) error {
		done <- job(jobCtx)
		return nil
	})
	if err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new jobs and waits for queued jobs to finish.
func (p *Pool) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.closeMu.Unlock()
	p.wg.Wait()
}
