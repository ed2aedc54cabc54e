package httpclient

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Task is one unit of client work executed by a RunGroup or a WaitGroup,
// typically a closure around one client call.
type Task func(ctx context.Context) error

// RunGroupConcurrencyLimit is the maximum number of concurrent tasks in one RunGroup.
const RunGroupConcurrencyLimit = 32

// RunGroup allows scheduling tasks by the Add method
// and then running them concurrently by the RunAndWait method.
//
// The run will stop when the first error occurs.
// The first error will be returned from the RunAndWait method.
//
// If you need to start tasks immediately,
// or if you want to wait and collect all errors, use WaitGroup instead.
type RunGroup struct {
	ctx   context.Context
	start chan struct{} // postpone the run until RunAndWait will be called
	group *errgroup.Group
	sem   *semaphore.Weighted // limit concurrency
}

// NewRunGroup creates a new RunGroup.
func NewRunGroup(ctx context.Context) *RunGroup {
	return NewRunGroupWithLimit(ctx, RunGroupConcurrencyLimit)
}

// NewRunGroupWithLimit creates a new RunGroup with the given concurrent tasks limit.
func NewRunGroupWithLimit(ctx context.Context, limit int64) *RunGroup {
	group, ctx := errgroup.WithContext(ctx)
	return &RunGroup{
		ctx:   ctx,
		start: make(chan struct{}),
		group: group,
		sem:   semaphore.NewWeighted(limit),
	}
}

// Add a task for running.
// The task will run on call of the RunAndWait method.
// Additional tasks can be added using the Add method (for example from a running task),
// even if RunAndWait has already been called, but is not yet finished.
func (g *RunGroup) Add(task Task) {
	g.group.Go(func() error {
		// Postpone the run until RunAndWait will be called
		<-g.start

		// Limit the number of concurrent tasks
		if err := g.sem.Acquire(g.ctx, 1); err != nil {
			// Ctx is done, return
			return err
		}
		defer g.sem.Release(1)

		return task(g.ctx)
	})
}

// RunAndWait starts the tasks and waits for the result.
// After the first error the run stops and the error is returned.
func (g *RunGroup) RunAndWait() error {
	close(g.start)
	return g.group.Wait()
}
