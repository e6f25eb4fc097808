package taskgraph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Executor runs a Graph one stage at a time. Tasks within a stage run
// concurrently, bounded by Limit (no bound when Limit <= 0). A stage always
// joins every task it started; if any failed, later stages do not run.
type Executor struct {
	Limit    int64
	OnStart  func(t Task)
	OnFinish func(t Task, elapsed time.Duration, err error)
}

// Run executes g. The returned error joins one *TaskError per failed task of
// the failing stage, in canonical order.
func (e Executor) Run(ctx context.Context, g *Graph) error {
	if g == nil {
		return fmt.Errorf("nil graph")
	}

	for _, stage := range g.Stages() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.runStage(ctx, stage); err != nil {
			return err
		}
	}
	return nil
}

func (e Executor) runStage(ctx context.Context, stage []Task) error {
	limit := e.Limit
	if limit <= 0 {
		limit = int64(len(stage))
	}
	sem := semaphore.NewWeighted(limit)

	errs := make([]error, len(stage))
	var wg sync.WaitGroup

	for i, t := range stage {
		if err := sem.Acquire(ctx, 1); err != nil {
			errs[i] = &TaskError{Task: t.Name, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, t Task) {
			defer wg.Done()
			defer sem.Release(1)
			if err := e.runTask(ctx, t); err != nil {
				errs[i] = &TaskError{Task: t.Name, Err: err}
			}
		}(i, t)
	}
	wg.Wait()

	return errors.Join(errs...)
}

func (e Executor) runTask(ctx context.Context, t Task) (err error) {
	if e.OnStart != nil {
		e.OnStart(t)
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if e.OnFinish != nil {
			e.OnFinish(t, time.Since(start), err)
		}
	}()
	if t.Run == nil {
		return nil
	}
	return t.Run(ctx)
}
