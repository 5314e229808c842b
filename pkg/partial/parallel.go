package partial

import (
	"context"
	"sync"
)

// renderResult is the outcome of loading one tile.
type renderResult struct {
	key     TileKey
	partial *RenderedPartial
	err     error
}

// renderKeys loads keys using a pool of up to Options.Workers goroutines.
//
// Results are returned in the order of keys regardless of completion order.
// Progress, if not nil, is called after each tile with (done, total). Keys
// not yet started when ctx is cancelled fail with the context error.
func (ix *Intersector) renderKeys(ctx context.Context, keys []TileKey, progress func(done, total int)) []renderResult {
	results := make([]renderResult, len(keys))
	if len(keys) == 0 {
		return results
	}

	// Don't create more workers than tiles
	workers := ix.opts.Workers
	if workers > len(keys) {
		workers = len(keys)
	}

	jobs := make(chan int, len(keys))
	done := make(chan int, len(keys))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				key := keys[index]
				if err := ctx.Err(); err != nil {
					results[index] = renderResult{key: key, err: &RenderError{Key: key, Err: err}}
				} else {
					p, err := ix.load(ctx, key)
					results[index] = renderResult{key: key, partial: p, err: err}
				}
				done <- index
			}
		}()
	}

	for i := range keys {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for range done {
		completed++
		if progress != nil {
			progress(completed, len(keys))
		}
	}

	return results
}
