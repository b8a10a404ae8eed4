// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// Task is one unit of batch work. Tasks handle and record their own errors;
// the pool only bounds concurrency and joins completion.
type Task func(ctx context.Context)

// Pool runs batches of tasks with a fixed concurrency cap. The cap is sized
// by configuration, not by batch size, so a large account set cannot exhaust
// resources.
type Pool struct {
	n   int
	log *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	plog := logger.With().Str("component", "WorkerPool").Logger()
	return &Pool{n: workers, log: &plog}
}

// Run executes every task with at most the configured number running
// concurrently and blocks until all of them have finished. There is no
// cancellation of dispatched work and no partial completion: once Run
// returns, every task has run exactly once. Completion order is unspecified.
func (p *Pool) Run(ctx context.Context, tasks []Task) {
	if len(tasks) == 0 {
		return
	}
	workers := p.n
	if workers > len(tasks) {
		workers = len(tasks)
	}

	jobs := make(chan Task)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for task := range jobs {
				task(ctx)
			}
		}(i)
	}

	for _, t := range tasks {
		jobs <- t
	}
	close(jobs)
	wg.Wait()
}
