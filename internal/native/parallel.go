package native

import (
	"runtime"
	"sync"
	"sync/atomic"
)

var (
	maxParallelWorkers atomic.Int64
	workerSemOnce      sync.Once
	workerSem          chan struct{}
)

// SetMaxWorkers bounds the number of goroutines used by row-parallel kernels.
// Zero or a negative value means GOMAXPROCS.
func SetMaxWorkers(n int) {
	if n < 0 {
		n = 0
	}
	maxParallelWorkers.Store(int64(n))
}

// MaxWorkers returns the configured bound, 0 means GOMAXPROCS.
func MaxWorkers() int {
	return int(maxParallelWorkers.Load())
}

// ParallelFor splits [0, total) into contiguous chunks and runs fn on each.
// Chunks never overlap, so fn may write rows of its chunk without locking.
// A chunk that finds no free worker slot runs on the calling goroutine, so fn
// may itself call ParallelFor.
func ParallelFor(total int, fn func(start, end int)) {
	if total <= 0 {
		return
	}
	procs := runtime.GOMAXPROCS(0)
	workerSemOnce.Do(func() {
		workerSem = make(chan struct{}, procs)
	})

	workers := procs
	if limit := MaxWorkers(); limit > 0 && workers > limit {
		workers = limit
	}
	if workers > cap(workerSem) {
		workers = cap(workerSem)
	}
	if workers > total {
		workers = total
	}
	if workers <= 1 {
		fn(0, total)
		return
	}

	step := (total + workers - 1) / workers
	var (
		wg        sync.WaitGroup
		panicOnce sync.Once
		panicked  any
	)
	run := func(s, e int) {
		defer func() {
			if r := recover(); r != nil {
				panicOnce.Do(func() { panicked = r })
			}
		}()
		fn(s, e)
	}
	for i := 0; i < workers; i++ {
		start := i * step
		end := start + step
		if end > total {
			end = total
		}
		if start >= end {
			break
		}

		// Nested calls from fn find every slot taken and run inline.
		select {
		case workerSem <- struct{}{}:
		default:
			run(start, end)
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			defer func() { <-workerSem }()
			run(s, e)
		}(start, end)
	}
	wg.Wait()

	// Re-raise on the calling goroutine so callers can recover.
	if panicked != nil {
		panic(panicked)
	}
}
