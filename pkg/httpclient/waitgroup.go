package httpclient

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/hashicorp/go-multierror"
)

// WaitGroupConcurrencyLimit is the maximum number of concurrent tasks in one WaitGroup.
const WaitGroupConcurrencyLimit = 8

// WaitGroup allows running tasks concurrently using the Go method
// and waiting until all tasks are completed using the Wait method.
//
// A task starts immediately after calling the Go method.
// If an error occurs, the run will not stop, all tasks will be finished.
// The Wait method at the end returns all errors that have occurred, if any.
//
// If you need to schedule tasks and run them later,
// or if you want to stop at the first error, use RunGroup instead.
type WaitGroup struct {
	ctx context.Context
	wg  *sync.WaitGroup     // wait for all
	sem *semaphore.Weighted // limit concurrency

	lock *sync.Mutex // for err
	err  *multierror.Error
}

// NewWaitGroup creates a new WaitGroup.
func NewWaitGroup(ctx context.Context) *WaitGroup {
	return NewWaitGroupWithLimit(ctx, WaitGroupConcurrencyLimit)
}

// NewWaitGroupWithLimit creates a new WaitGroup with the given concurrent tasks limit.
func NewWaitGroupWithLimit(ctx context.Context, limit int64) *WaitGroup {
	return &WaitGroup{ctx: ctx, wg: &sync.WaitGroup{}, sem: semaphore.NewWeighted(limit), lock: &sync.Mutex{}}
}

// Wait for all tasks to complete. All errors that have occurred will be returned.
func (g *WaitGroup) Wait() error {
	g.wg.Wait()
	// If there is only one error, then unwrap multierror
	if g.err != nil && len(g.err.Errors) == 1 {
		return g.err.Errors[0]
	}
	return g.err.ErrorOrNil()
}

// Go runs a task concurrently.
func (g *WaitGroup) Go(task Task) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		// Limit the number of concurrent tasks
		if err := g.sem.Acquire(g.ctx, 1); err != nil {
			// Ctx is done, return
			return
		}
		defer g.sem.Release(1)

		if err := task(g.ctx); err != nil {
			g.lock.Lock()
			defer g.lock.Unlock()
			g.err = multierror.Append(g.err, err)
		}
	}()
}
