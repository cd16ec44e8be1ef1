package upstream

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunThrottled_PreservesOrder(t *testing.T) {
	const n = 12
	tasks := make([]Operation, n)
	for i := 0; i < n; i++ {
		i := i
		tasks[i] = func(ctx context.Context) (*Result, error) {
			// Finish out of submission order within the window.
			time.Sleep(time.Duration(n-i) * time.Millisecond)
			return &Result{StatusCode: 200, Body: []byte(fmt.Sprintf("task-%d", i))}, nil
		}
	}

	results := RunThrottled(context.Background(), tasks, ThrottleConfig{MaxConcurrent: 4})

	if len(results) != n {
		t.Fatalf("got %d results, want %d", len(results), n)
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("task %d failed: %v", i, r.Err)
		}
		want := fmt.Sprintf("task-%d", i)
		if string(r.Result.Body) != want {
			t.Errorf("results[%d] = %q, want %q", i, r.Result.Body, want)
		}
	}
}

func TestRunThrottled_MaxInFlight(t *testing.T) {
	const n, window = 20, 4

	var inFlight, peak int32
	tasks := make([]Operation, n)
	for i := 0; i < n; i++ {
		tasks[i] = func(ctx context.Context) (*Result, error) {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return &Result{StatusCode: 200}, nil
		}
	}

	RunThrottled(context.Background(), tasks, ThrottleConfig{MaxConcurrent: window})

	if p := atomic.LoadInt32(&peak); p > window {
		t.Errorf("observed %d tasks in flight, want at most %d", p, window)
	}
}

func TestRunThrottled_NoWindowPipelining(t *testing.T) {
	const n, window = 9, 3

	var finished int32
	tasks := make([]Operation, n)
	for i := 0; i < n; i++ {
		i := i
		tasks[i] = func(ctx context.Context) (*Result, error) {
			// Everything in earlier windows must have completed before a
			// later window's task starts.
			windowIndex := i / window
			if done := atomic.LoadInt32(&finished); int(done) < windowIndex*window {
				t.Errorf("task %d started with only %d earlier tasks finished, want >= %d",
					i, done, windowIndex*window)
			}
			time.Sleep(time.Duration(i%window+1) * time.Millisecond)
			atomic.AddInt32(&finished, 1)
			return &Result{StatusCode: 200}, nil
		}
	}

	RunThrottled(context.Background(), tasks, ThrottleConfig{MaxConcurrent: window})
}

func TestRunThrottled_FailuresDoNotAbort(t *testing.T) {
	tasks := []Operation{
		func(ctx context.Context) (*Result, error) { return &Result{StatusCode: 200}, nil },
		func(ctx context.Context) (*Result, error) {
			return nil, &HTTPError{StatusCode: 503, Message: "down"}
		},
		func(ctx context.Context) (*Result, error) { return &Result{StatusCode: 200}, nil },
	}

	results := RunThrottled(context.Background(), tasks, ThrottleConfig{MaxConcurrent: 1})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Error("healthy tasks failed alongside the broken one")
	}
	var httpErr *HTTPError
	if !errors.As(results[1].Err, &httpErr) {
		t.Errorf("results[1].Err = %v, want HTTPError", results[1].Err)
	}
}

func TestRunThrottled_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executed := int32(0)
	tasks := []Operation{
		func(ctx context.Context) (*Result, error) {
			atomic.AddInt32(&executed, 1)
			return &Result{StatusCode: 200}, nil
		},
		func(ctx context.Context) (*Result, error) {
			atomic.AddInt32(&executed, 1)
			return &Result{StatusCode: 200}, nil
		},
	}

	results := RunThrottled(ctx, tasks, ThrottleConfig{MaxConcurrent: 2})

	if n := atomic.LoadInt32(&executed); n != 0 {
		t.Errorf("%d tasks executed after cancellation, want 0", n)
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
}

func TestRunThrottled_WindowFloor(t *testing.T) {
	var inFlight, peak int32
	tasks := make([]Operation, 5)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (*Result, error) {
			cur := atomic.AddInt32(&inFlight, 1)
			if cur > atomic.LoadInt32(&peak) {
				atomic.StoreInt32(&peak, cur)
			}
			atomic.AddInt32(&inFlight, -1)
			return &Result{StatusCode: 200}, nil
		}
	}

	results := RunThrottled(context.Background(), tasks, ThrottleConfig{MaxConcurrent: 0})

	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}
	if p := atomic.LoadInt32(&peak); p > 1 {
		t.Errorf("zero window ran %d tasks in parallel, want serial execution", p)
	}
}

func TestRunThrottled_EmptyInput(t *testing.T) {
	results := RunThrottled(context.Background(), nil, ThrottleConfig{MaxConcurrent: 3})
	if len(results) != 0 {
		t.Errorf("got %d results for empty input, want 0", len(results))
	}
}

func TestRunThrottled_OccupancyObserver(t *testing.T) {
	const n, window = 5, 2

	tasks := make([]Operation, n)
	for i := 0; i < n; i++ {
		tasks[i] = func(ctx context.Context) (*Result, error) {
			return &Result{StatusCode: 200}, nil
		}
	}

	var seen []int
	RunThrottled(context.Background(), tasks, ThrottleConfig{
		MaxConcurrent: window,
		OnOccupancy:   func(occupancy int) { seen = append(seen, occupancy) },
	})

	// Full windows, the short tail window, then the drained batch.
	want := []int{2, 2, 1, 0}
	if len(seen) != len(want) {
		t.Fatalf("occupancy observations = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("observation %d = %d, want %d", i, seen[i], want[i])
		}
	}
}
