package testutil

import (
	"sync"
	"sync/atomic"

	dErrors "aegis/pkg/domain-errors"
)

// ConcurrentResult counts outcomes of RunConcurrent by domain error code.
type ConcurrentResult struct {
	Successes        int32
	Errors           int32
	ValidationErrors int32
	StoreUnavailable int32
}

func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.ValidationErrors + r.StoreUnavailable
}

// RunConcurrent calls fn from goroutines concurrently and classifies
// their errors.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var successes, errs, invalid, unavailable atomic.Int32
	run(goroutines, fn, func(err error) {
		switch {
		case err == nil:
			successes.Add(1)
		case dErrors.IsValidation(err):
			invalid.Add(1)
		case dErrors.IsStoreUnavailable(err):
			unavailable.Add(1)
		default:
			errs.Add(1)
		}
	})
	return &ConcurrentResult{
		Successes:        successes.Load(),
		Errors:           errs.Load(),
		ValidationErrors: invalid.Load(),
		StoreUnavailable: unavailable.Load(),
	}
}

// RunConcurrentCollect is RunConcurrent for callers that inspect each error.
func RunConcurrentCollect(goroutines int, fn func(idx int) error) (successes int32, errs []error) {
	var mu sync.Mutex
	var ok atomic.Int32
	run(goroutines, fn, func(err error) {
		if err == nil {
			ok.Add(1)
			return
		}
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})
	return ok.Load(), errs
}

// run starts every goroutine before any calls fn, to maximize contention.
func run(goroutines int, fn func(idx int) error, record func(error)) {
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			record(fn(i))
		}()
	}
	close(start)
	wg.Wait()
}
