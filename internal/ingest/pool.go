package ingest

import (
	"context"
	"runtime"
	"sync"
)

// runPool executes fn for every index in [0, jobs) across a bounded worker
// pool. Scheduling stops once ctx is canceled; in-flight jobs finish. The
// return value is ctx.Err() when cancellation cut the run short.
func runPool(ctx context.Context, workers, jobs int, fn func(int)) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > jobs {
		workers = jobs
	}
	if jobs == 0 {
		return ctx.Err()
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				fn(idx)
			}
		}()
	}

	var err error
dispatch:
	for i := 0; i < jobs; i++ {
		if err = ctx.Err(); err != nil {
			break dispatch
		}
		select {
		case indexes <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		}
	}
	close(indexes)
	wg.Wait()
	return err
}
