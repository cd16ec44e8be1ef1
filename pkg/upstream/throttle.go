package upstream

import (
	"context"
	"log/slog"
	"sync"
)

// TaskResult pairs one task's outcome with its input position: index i
// of the returned slice always corresponds to tasks[i].
type TaskResult struct {
	Result *Result
	Err    error
}

// RunThrottled executes tasks in fixed windows of cfg.MaxConcurrent.
//
// Every task in a window runs in parallel; the next window starts only
// after the whole window has drained, so a slow task delays everything
// behind it and at most MaxConcurrent calls are ever in flight. There
// is no cross-window pipelining. The output preserves input order and
// always has exactly len(tasks) entries.
//
// A failed task does not abort the batch; its slot carries the error.
// If ctx is done before a window starts, the remaining slots are filled
// with ctx.Err() without executing their tasks.
func RunThrottled(ctx context.Context, tasks []Operation, cfg ThrottleConfig) []TaskResult {
	window := cfg.MaxConcurrent
	if window < 1 {
		window = 1
	}

	results := make([]TaskResult, len(tasks))

	if cfg.OnOccupancy != nil {
		defer cfg.OnOccupancy(0)
	}

	for start := 0; start < len(tasks); start += window {
		if err := ctx.Err(); err != nil {
			for i := start; i < len(tasks); i++ {
				results[i] = TaskResult{Err: err}
			}
			slog.Debug("throttled batch cancelled",
				"completed", start,
				"remaining", len(tasks)-start,
			)
			break
		}

		end := start + window
		if end > len(tasks) {
			end = len(tasks)
		}

		if cfg.OnOccupancy != nil {
			cfg.OnOccupancy(end - start)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := tasks[i](ctx)
				results[i] = TaskResult{Result: res, Err: err}
			}(i)
		}
		wg.Wait()
	}

	return results
}
