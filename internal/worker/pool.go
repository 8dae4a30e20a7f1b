// Package worker provides the concurrency primitives for batch verification
// and polite fetching: a bounded worker pool and a per-host rate limiter.
package worker

import (
	"context"
	"sync"
)

// Task is one unit of work run by a Pool
type Task[T any] func(ctx context.Context) T

// Pool runs tasks with a fixed number of workers
type Pool[T any] struct {
	workers int
}

// NewPool creates a pool; fewer than one worker means one
func NewPool[T any](workers int) *Pool[T] {
	if workers <= 0 {
		workers = 1
	}
	return &Pool[T]{workers: workers}
}

// Workers returns the number of concurrent workers
func (p *Pool[T]) Workers() int {
	return p.workers
}

// Run executes tasks and returns their results in task order.
// ran[i] is false for a task that was never started because ctx ended first.
func (p *Pool[T]) Run(ctx context.Context, tasks []Task[T]) (results []T, ran []bool) {
	results = make([]T, len(tasks))
	ran = make([]bool, len(tasks))
	if len(tasks) == 0 {
		return results, ran
	}

	next := make(chan int)
	var wg sync.WaitGroup

	workers := min(p.workers, len(tasks))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				if ctx.Err() != nil {
					continue
				}
				results[i] = tasks[i](ctx)
				ran[i] = true
			}
		}()
	}

feed:
	for i := range tasks {
		select {
		case next <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(next)
	wg.Wait()

	return results, ran
}
