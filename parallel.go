package dither

import (
	"runtime"
	"sync"
)

// parallelRange splits the index range [0, n) into contiguous chunks and
// runs f(lo, hi) on each concurrently across workers goroutines (workers <=
// 0 means runtime.GOMAXPROCS(0)).
//
// Adapted from the teacher's per-pixel image partitioner: the same
// min/max chunk arithmetic, generalized from image rows to an arbitrary
// index range so it can drive the palette-table build (C3's buildPalette)
// instead of per-pixel image writes — the one place in this engine where
// out-of-order work is safe (palette entries have no cross-entry
// dependency, unlike the driver loop, which spec.md §4.7/§5 requires to
// stay strictly sequential under diffusion).
func parallelRange(workers, n int, f func(lo, hi int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 || n == 0 {
		f(0, n)
		return
	}

	partSize := n / workers
	if partSize == 0 {
		// workers > n, shouldn't happen given the clamp above, but keep
		// the teacher's defensive fallback.
		workers = n
		partSize = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		var lo, hi int
		if i+1 == workers {
			// Last part: fix off-by-one, catch the remainder.
			lo, hi = partSize*i, n
		} else {
			lo, hi = partSize*i, partSize*(i+1)
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			f(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
