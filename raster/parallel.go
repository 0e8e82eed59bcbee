package raster

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers returns n, or GOMAXPROCS when n is not positive.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// Bands splits [0, n) into at most workers contiguous half-open ranges.
func Bands(n, workers int) [][2]int {
	workers = Workers(workers)
	if workers > n {
		workers = n
	}
	if workers <= 0 {
		return nil
	}
	bands := make([][2]int, 0, workers)
	size := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += size {
		bands = append(bands, [2]int{lo, min(lo+size, n)})
	}
	return bands
}

// Parallel runs fn once per band of [0, n) on its own goroutine and returns
// the first error.
func Parallel(n, workers int, fn func(lo, hi int) error) error {
	var g errgroup.Group
	g.SetLimit(Workers(workers))
	for _, b := range Bands(n, workers) {
		g.Go(func() error { return fn(b[0], b[1]) })
	}
	return g.Wait()
}
