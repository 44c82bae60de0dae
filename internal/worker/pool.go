package worker

import (
	"context"
	"sync"
)

// Job is a unit of work run by the pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job produced
type Result interface {
	GetError() error
}

type queuedJob struct {
	seq int
	job Job
}

type queuedResult struct {
	seq    int
	result Result
}

// Pool runs jobs on a fixed number of goroutines. Wait returns the results
// in submission order regardless of which worker finished first.
type Pool struct {
	workers    int
	jobQueue   chan queuedJob
	results    chan queuedResult
	collected  []queuedResult
	collectWG  sync.WaitGroup
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	mu         sync.Mutex
	submitted  int
}

// NewPool creates a pool bound to a background context
func NewPool(workers int) *Pool {
	return NewPoolContext(context.Background(), workers)
}

// NewPoolContext creates a pool whose jobs see ctx; cancelling ctx stops
// the workers after their current job
func NewPoolContext(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan queuedJob, workers*2),
		results:    make(chan queuedResult, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	p.collectWG.Add(1)
	go p.collect()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case qj, ok := <-p.jobQueue:
			if !ok {
				return
			}
			// results is drained continuously by collect, so this send only
			// waits for buffer space
			p.results <- queuedResult{seq: qj.seq, result: qj.job.Execute(p.ctx)}
		}
	}
}

func (p *Pool) collect() {
	defer p.collectWG.Done()
	for r := range p.results {
		p.collected = append(p.collected, r)
	}
}

// Submit queues a job. It returns without queuing once the pool is shut down.
func (p *Pool) Submit(job Job) {
	p.mu.Lock()
	seq := p.submitted
	p.submitted++
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
	case p.jobQueue <- queuedJob{seq: seq, job: job}:
	}
}

// Wait closes the queue, waits for every queued job and returns one entry
// per submitted job, in submission order. Jobs dropped because the context
// was cancelled have a nil entry.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()

	p.mu.Lock()
	out := make([]Result, p.submitted)
	p.mu.Unlock()

	for _, r := range p.collected {
		out[r.seq] = r.result
	}
	p.cancelFunc()
	return out
}

// Shutdown stops the workers without waiting for queued jobs
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
