//go:build !integration

package worker

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func newPool(workers int) *Pool {
	logger := zerolog.New(io.Discard)
	return NewPool(workers, &logger)
}

func TestPoolRun(t *testing.T) {
	ctx := context.Background()

	t.Run("runs every task exactly once", func(t *testing.T) {
		var ran int64
		tasks := make([]Task, 100)
		for i := range tasks {
			tasks[i] = func(ctx context.Context) { atomic.AddInt64(&ran, 1) }
		}
		newPool(4).Run(ctx, tasks)
		if ran != 100 {
			t.Errorf("expected 100 task runs, got %d", ran)
		}
	})

	t.Run("never exceeds the concurrency cap", func(t *testing.T) {
		const limit = 3
		var cur, peak int64
		var mu sync.Mutex
		tasks := make([]Task, 50)
		for i := range tasks {
			tasks[i] = func(ctx context.Context) {
				n := atomic.AddInt64(&cur, 1)
				mu.Lock()
				if n > peak {
					peak = n
				}
				mu.Unlock()
				atomic.AddInt64(&cur, -1)
			}
		}
		newPool(limit).Run(ctx, tasks)
		if peak > limit {
			t.Errorf("observed %d concurrent tasks, cap is %d", peak, limit)
		}
	})

	t.Run("empty batch returns immediately", func(t *testing.T) {
		newPool(4).Run(ctx, nil)
	})
}
