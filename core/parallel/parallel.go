// Package parallel splits row ranges across CPU cores for model inference.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// chunkBounds splits [0, items) into one contiguous [start, end) range per
// CPU core.
func chunkBounds(items int) [][2]int {
	if items <= 0 {
		return nil
	}
	numWorkers := min(runtime.NumCPU(), items)
	// ceiling division
	chunkSize := (items + numWorkers - 1) / numWorkers

	bounds := make([][2]int, 0, numWorkers)
	for start := 0; start < items; start += chunkSize {
		bounds = append(bounds, [2]int{start, min(start+chunkSize, items)})
	}
	return bounds
}

// FirstError runs fn(0, items) on the calling goroutine when items <= threshold.
// Above the threshold it runs one chunk per CPU core concurrently and returns
// the error of the lowest-indexed chunk that failed, so results are
// deterministic. Every chunk runs to completion even after a failure.
func FirstError(items int, threshold int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}
	if items <= threshold {
		return fn(0, items)
	}

	bounds := chunkBounds(items)
	errs := make([]error, len(bounds))
	var g errgroup.Group
	for i, b := range bounds {
		i, b := i, b
		g.Go(func() error {
			errs[i] = fn(b[0], b[1])
			return errs[i]
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
