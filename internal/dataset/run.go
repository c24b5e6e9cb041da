package dataset

import (
	"context"
	"sync"
)

// Run starts workers goroutines. Each receives its own clone of ds narrowed
// to its block and calls fn on it. The first error cancels the context handed
// to the remaining workers and is returned.
func Run(ctx context.Context, ds *Records, workers int, fn func(ctx context.Context, id int, part *Records) error) error {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}
	parts := make([]*Records, workers)
	for id := range parts {
		parts[id] = ds.Clone()
		if err := InitWorker(WorkerInfo{ID: id, NumWorkers: workers, Dataset: parts[id]}); err != nil {
			return err
		}
	}
	for id, part := range parts {
		wg.Add(1)
		go func(id int, part *Records) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}
			if err := fn(ctx, id, part); err != nil {
				fail(err)
			}
		}(id, part)
	}
	wg.Wait()
	return firstErr
}
