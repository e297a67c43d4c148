// Package pool runs a function over a slice with bounded concurrency.
package pool

import (
	"context"
	"fmt"
	"sync"
)

// WorkerFunc processes one item.
type WorkerFunc[T any] func(ctx context.Context, item T) error

// Run processes items with up to numWorkers goroutines and returns the errors
// of the items that failed. numWorkers below 1 is treated as 1. A panicking
// worker is reported as an error for its item. Items not yet started when ctx
// is cancelled are skipped silently.
func Run[T any](ctx context.Context, items []T, numWorkers int, workerFunc WorkerFunc[T]) []error {
	if len(items) == 0 {
		return nil
	}
	numWorkers = max(1, min(numWorkers, len(items)))

	var wg sync.WaitGroup
	taskChan := make(chan T, numWorkers)
	errChan := make(chan error, len(items))

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range taskChan {
				if ctx.Err() != nil {
					continue
				}
				if err := safeCall(ctx, item, workerFunc); err != nil {
					errChan <- err
				}
			}
		}()
	}

OUT:
	for _, item := range items {
		select {
		case taskChan <- item:
		case <-ctx.Done():
			break OUT
		}
	}
	close(taskChan)

	wg.Wait()
	close(errChan)

	var allErrors []error
	for err := range errChan {
		allErrors = append(allErrors, err)
	}
	return allErrors
}

func safeCall[T any](ctx context.Context, item T, fn WorkerFunc[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panicked on %v: %v", item, r)
		}
	}()
	return fn(ctx, item)
}
