package ingest

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunBatches calls fn for every item in fixed-size batches. Items within a
// batch run concurrently; the next batch starts only after every item of the
// current one returned. The first error of a batch is returned once that batch
// settled, and later batches are not started. A failing item never cancels
// its siblings.
func RunBatches[T any](ctx context.Context, items []T, size int, fn func(context.Context, T) error) error {
	if size < 1 {
		size = 1
	}

	for start := 0; start < len(items); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+size, len(items))

		var g errgroup.Group
		for _, item := range items[start:end] {
			item := item
			g.Go(func() error {
				return fn(ctx, item)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}
