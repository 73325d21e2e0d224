package pool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/ib-77/shellcall/pkg/rop/fault"
	"golang.org/x/sync/errgroup"
)

var ErrNoLines = errors.New("pool: at least one line is required")

// TaskError is returned by Run when a task fails; it aborts the whole batch.
type TaskError struct {
	Index int
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("pool: task %d: %v", e.Index, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Run maps every task through process on at most lines concurrent workers.
// The output is index-aligned with tasks regardless of completion order.
// The first failing task aborts the batch: no partial output is returned.
func Run[T, R any](ctx context.Context, tasks []T,
	process func(ctx context.Context, task T) (R, error), lines int) ([]R, error) {

	if lines < 1 {
		return nil, ErrNoLines
	}

	out := make([]R, len(tasks))
	if len(tasks) == 0 {
		return out, nil
	}

	var cursor atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for range min(lines, len(tasks)) {
		g.Go(func() error {
			return locomotive(gctx, tasks, out, &cursor, process)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// locomotive claims indexes from cursor until none remain. A claim is a single
// atomic add, so no two workers ever see the same index.
func locomotive[T, R any](ctx context.Context, tasks []T, out []R, cursor *atomic.Int64,
	process func(ctx context.Context, task T) (R, error)) error {

	for {
		if ctx.Err() != nil {
			// a sibling failed; its error is the one Wait reports
			return ctx.Err()
		}

		i := int(cursor.Add(1) - 1)
		if i >= len(tasks) {
			return nil
		}

		r, err := call(ctx, tasks[i], process)
		if err != nil {
			return &TaskError{Index: i, Err: err}
		}
		out[i] = r
	}
}

func call[T, R any](ctx context.Context, task T,
	process func(ctx context.Context, task T) (R, error)) (r R, err error) {

	defer func() {
		if v := recover(); v != nil {
			err = fault.FromPanic(v, debug.Stack())
		}
	}()

	return process(ctx, task)
}
