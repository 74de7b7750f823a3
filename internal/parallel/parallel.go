package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

var workerLimit int32

// SetWorkers caps the number of goroutines For may use. n <= 0 restores the
// default of GOMAXPROCS.
func SetWorkers(n int) {
	if n < 0 {
		n = 0
	}
	atomic.StoreInt32(&workerLimit, int32(n))
}

// Workers reports the current goroutine budget for For.
func Workers() int {
	procs := runtime.GOMAXPROCS(0)
	if limit := int(atomic.LoadInt32(&workerLimit)); limit > 0 && limit < procs {
		return limit
	}
	return procs
}

// For splits [0, n) into contiguous chunks and runs fn on each concurrently.
// fn must only write state owned by its own range.
func For(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := Workers()
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
