// Package workerpool runs tasks on a bounded set of goroutines.
package workerpool

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool manages a fixed number of worker goroutines fed from a queue.
type Pool struct {
	workers int
	tasks   chan func()
	closed  atomic.Bool
	once    sync.Once
	wg      sync.WaitGroup

	// mu guards submissions against a concurrent Close.
	mu sync.RWMutex
}

// New starts a pool of workers goroutines. Values below 1 use GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		tasks:   make(chan func(), workers*4),
	}
	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit queues task, blocking while the queue is full. It returns false
// if the pool is closed.
func (p *Pool) Submit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed.Load() {
		return false
	}
	p.tasks <- task
	return true
}

// Close stops accepting tasks and waits for queued tasks to finish.
// It is safe to call more than once.
func (p *Pool) Close() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed.Store(true)
		close(p.tasks)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

// Map calls fn for every item on a pool of workers goroutines and returns
// the results and errors at the index of their item, so output order is
// input order regardless of completion order. Items not started before
// ctx is done get ctx.Err().
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(ctx context.Context, i int, item T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := make([]error, len(items))
	if len(items) == 0 {
		return results, errs
	}
	if workers > len(items) {
		workers = len(items)
	}

	p := New(workers)
	for i, item := range items {
		p.Submit(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = fn(ctx, i, item)
		})
	}
	p.Close()
	return results, errs
}
