package util

import (
	"context"
	"sync"
)

// Parallel runs fn over inputs with at most workerLimit concurrent calls.
// The first error cancels the shared context and wins; remaining workers
// drain without starting new work.
func Parallel[T any](inputs []T, workerLimit int, fn func(context.Context, T) error) error {
	if len(inputs) == 0 {
		return nil
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}
	if workerLimit > len(inputs) {
		workerLimit = len(inputs)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)
	sem := make(chan struct{}, workerLimit)

	for _, item := range inputs {
		select {
		case <-ctx.Done():
		case sem <- struct{}{}:
			wg.Add(1)
			go func(item T) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := fn(ctx, item); err != nil {
					once.Do(func() {
						first = err
						cancel()
					})
				}
			}(item)
		}
	}

	wg.Wait()
	return first
}
