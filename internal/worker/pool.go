// Package worker provides concurrent batch processing of claim bundles.
// Claims never share state, so they parallelize without coordination.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work executed by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job
type Result interface {
	GetError() error
}

// Pool runs jobs across a fixed set of workers
type Pool struct {
	workers  int
	jobQueue chan Job
	results  chan Result
	done     <-chan struct{} // Set by Start; unblocks Submit on cancellation
	wg       sync.WaitGroup
}

// NewPool creates a pool with the given worker count
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, workers*2),
		results:  make(chan Result, workers*2),
	}
}

// Start launches the workers. Each drains the job queue until it closes
// or the context is cancelled.
func (p *Pool) Start(ctx context.Context) {
	p.done = ctx.Done()
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobQueue:
					if !ok {
						return
					}
					select {
					case p.results <- job.Execute(ctx):
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}
}

// Submit queues a job for execution. Once the pool's context is
// cancelled the workers stop draining the queue, so Submit returns false
// without queueing instead of blocking the submitter forever.
func (p *Pool) Submit(job Job) bool {
	select {
	case <-p.done:
		return false
	case p.jobQueue <- job:
		return true
	}
}

// Close signals that no more jobs will be submitted and closes the
// results channel once all workers finish
func (p *Pool) Close() {
	close(p.jobQueue)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

// Results returns the result channel
func (p *Pool) Results() <-chan Result {
	return p.results
}
